package api_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dominotrain/internal/api"
	"github.com/mcoot/dominotrain/internal/api/response"
	"github.com/mcoot/dominotrain/internal/config"
	"github.com/mcoot/dominotrain/internal/factory"
	"github.com/mcoot/dominotrain/internal/push"
	"github.com/mcoot/dominotrain/internal/testutil"
)

func TestServerServesUntilCancelled(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})
	cfg := config.Config{
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		ShutdownTimeout:    time.Second,
		HubCleanupInterval: 10 * time.Millisecond,
	}
	server := api.NewServer(router, cfg, app.HubManager, testutil.NopLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// A hub with no listeners is swept while the server runs
	client := push.NewClient("alice", "sse")
	hub := app.HubManager.Attach("S1", client)
	hub.Unregister(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	var health response.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	_ = resp.Body.Close()
	assert.Equal(t, "ok", health.Status)

	require.Eventually(t, func() bool {
		return app.HubManager.GetHub("S1") == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerShutdownClosesPushHubs(t *testing.T) {
	app := factory.NewTestApp()
	server := api.NewServer(http.NotFoundHandler(), config.Config{ShutdownTimeout: time.Second}, app.HubManager, testutil.NopLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	app.HubManager.Attach("S1", push.NewClient("alice", "sse"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	// Shutdown hooks run on their own goroutine
	require.Eventually(t, func() bool {
		hubs, clients := app.HubManager.Stats()
		return hubs == 0 && clients == 0
	}, time.Second, 5*time.Millisecond)
}
