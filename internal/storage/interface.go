package storage

import (
	"context"

	"github.com/mcoot/dominotrain/internal/model"
)

// Storage persists session snapshots for the lifetime of a session and the
// records of finished games. Implementations hand out independent copies:
// mutating a loaded session never changes what is stored until it is saved.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessionIDs(ctx context.Context) ([]model.SessionID, error)

	// Game record operations
	SaveGameRecord(ctx context.Context, record *model.GameRecord) error
	GetGameRecord(ctx context.Context, id model.SessionID) (*model.GameRecord, error)
	ListGameRecords(ctx context.Context) ([]*model.GameRecord, error)
}
