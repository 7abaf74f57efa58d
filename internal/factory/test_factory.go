package factory

import (
	"time"

	"github.com/mcoot/dominotrain/internal/dependencies/mocks"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/storage/memory"
	"github.com/mcoot/dominotrain/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Sessions default to two rounds of three-domino hands.
func NewTestApp() *TestApp {
	return NewTestAppWithDefaults(model.SessionConfig{RoundLimit: 2, InitialHandSize: 3})
}

// NewTestAppWithDefaults creates a test App with the given session defaults
func NewTestAppWithDefaults(defaults model.SessionConfig) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, defaults, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
