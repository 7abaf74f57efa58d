package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dominotrain/internal/api"
	"github.com/mcoot/dominotrain/internal/api/apierr"
	"github.com/mcoot/dominotrain/internal/api/response"
	"github.com/mcoot/dominotrain/internal/factory"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
	"github.com/mcoot/dominotrain/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// Mocked random: every draw takes the first remaining bone
	app := factory.NewTestApp()
	t.Cleanup(func() { app.HubManager.CloseAll() })

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, player string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) response.PlayerView {
	t.Helper()
	var view response.PlayerView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	return view
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

// createStartedSession sets up alice and bob in a dealt group turn: the
// engine is 0-0, alice holds 1 2 3 and bob holds 4 5 6.
func createStartedSession(t *testing.T, ts *testServer) string {
	t.Helper()

	ts.app.MockRandom.QueueID("S1")
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "alice")
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeView(t, rr).Session.ID

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/join", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/start", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	for _, p := range []string{"alice", "bob"} {
		rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/draw", nil, p)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	return id
}

func decodeHealth(t *testing.T, rr *httptest.ResponseRecorder) response.Health {
	t.Helper()
	var health response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	return health
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, response.Health{Status: "ok"}, decodeHealth(t, rr))

	createStartedSession(t, ts)
	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeHealth(t, rr).Sessions)
}

func TestRequestsRunThroughLoggingMiddleware(t *testing.T) {
	logger, buf := testutil.CaptureLogger()
	app := factory.NewTestApp()
	t.Cleanup(func() { app.HubManager.CloseAll() })
	handler := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing", nil)
	req.Header.Set("X-Player-ID", "alice")
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeSessionNotFound, apiErr.Code)
	assert.Equal(t, "req-123", apiErr.RequestID)

	logged := buf.String()
	assert.Contains(t, logged, `"request_id":"req-123"`)
	assert.Contains(t, logged, `"path":"/api/v1/sessions/missing"`)
	assert.Contains(t, logged, `"status":404`)
}

func TestUnidentifiedRequestsStillGetRequestID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	id := rr.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, decodeError(t, rr).RequestID)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestUnauthorizedWithoutPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/records", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPlayerQueryParameterIdentifies(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions?player=carol", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "carol", decodeView(t, rr).Session.Host)
}

func TestCreateJoinAndGetSession(t *testing.T) {
	ts := newTestServer(t)

	ts.app.MockRandom.QueueID("S1")
	body := map[string]int{"round_limit": 3, "initial_hand_size": 5}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body, "alice")
	require.Equal(t, http.StatusCreated, rr.Code)

	view := decodeView(t, rr)
	assert.Equal(t, "S1", view.Session.ID)
	assert.Equal(t, "alice", view.Session.Host)
	assert.Equal(t, "pregame", view.Session.Phase)
	assert.Equal(t, 3, view.Session.Config.RoundLimit)
	assert.Equal(t, 5, view.Session.Config.InitialHandSize)
	assert.Empty(t, view.Hand)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/S1/join", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"alice", "bob"}, decodeView(t, rr).Session.Players)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/S1/join", nil, "bob")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyInSession, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/S1", nil, "mallory")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/missing", nil, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeSessionNotFound, decodeError(t, rr).Code)
}

func TestStartRequiresHost(t *testing.T) {
	ts := newTestServer(t)

	ts.app.MockRandom.QueueID("S1")
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "alice")
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/S1/join", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/S1/start", nil, "bob")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotHost, decodeError(t, rr).Code)
}

func TestGroupTurnOverREST(t *testing.T) {
	ts := newTestServer(t)
	id := createStartedSession(t, ts)

	// Select 0-1 from the hand, then the engine
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]int{"domino_id": 1}, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	require.NotNil(t, view.Selected)
	assert.Equal(t, 1, *view.Selected)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]int{"domino_id": 0}, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	assert.Equal(t, []int{2, 3}, view.Hand)
	assert.Empty(t, view.Station.Tracks)
	require.NotNil(t, view.TurnStation)
	require.Len(t, view.TurnStation.Tracks, 1)
	assert.Equal(t, []int{1}, view.TurnStation.Tracks[0].DominoIDs)
	require.NotNil(t, view.Status.LastPlayedID)
	assert.Equal(t, 1, *view.Status.LastPlayedID)

	// Bob cannot see alice's provisional track
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	bobView := decodeView(t, rr)
	assert.Empty(t, bobView.TurnStation.Tracks)
	assert.Equal(t, []int{4, 5, 6}, bobView.Hand)

	// Both end the group turn; alice signalled first and goes first
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/end-turn", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/end-turn", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)

	view = decodeView(t, rr)
	assert.Equal(t, "player_turns", view.Session.Phase)
	assert.Equal(t, "alice", view.ActivePlayer)
	assert.Equal(t, []string{"alice", "bob"}, view.Session.TurnOrder)
	require.Len(t, view.Station.Tracks, 1)
	assert.Equal(t, "alice", view.Station.Tracks[0].Owner)
	assert.Equal(t, "player_awaiting_turn", view.State)

	// Now bob is out of turn
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/draw", nil, "bob")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotYourTurn, decodeError(t, rr).Code)
}

func TestUndoOverREST(t *testing.T) {
	ts := newTestServer(t)
	id := createStartedSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]int{"domino_id": 4}, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]int{"domino_id": 0}, "bob")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/undo", map[string]int{"domino_id": 5}, "bob")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNothingToUndo, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/undo", map[string]int{"domino_id": 4}, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	assert.Equal(t, []int{4, 5, 6}, view.Hand)
	assert.Empty(t, view.TurnStation.Tracks)
	assert.Nil(t, view.Status.LastPlayedID)
}

func TestDominoRequestsNeedAnID(t *testing.T) {
	ts := newTestServer(t)
	id := createStartedSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]string{}, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/select", map[string]int{"domino_id": 91}, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeDominoNotFound, decodeError(t, rr).Code)
}

func TestLeaveAndRecords(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/records", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.GameRecordList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Records)

	require.NoError(t, ts.app.Storage.SaveGameRecord(context.Background(), &model.GameRecord{
		SessionID:   "OLD",
		Players:     []model.PlayerID{"alice", "bob"},
		FinalTotals: map[model.PlayerID]int{"alice": 3, "bob": 9},
		Winners:     []model.PlayerID{"alice"},
		CompletedAt: ts.app.MockClock.Now(),
	}))

	rr = ts.request(http.MethodGet, "/api/v1/records", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Records, 1)
	assert.Equal(t, []string{"alice"}, list.Records[0].Winners)
	assert.Equal(t, 9, list.Records[0].FinalTotals["bob"])

	id := createStartedSession(t, ts)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/leave", nil, "bob")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"bob"}, decodeView(t, rr).Session.Disconnected)
}

func TestEventsStreamDeliversPushes(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ts.app.MockRandom.QueueID("S1")
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, "alice")
	require.Equal(t, http.StatusCreated, rr.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/sessions/S1/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-Player-ID", "alice")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
		close(events)
	}()

	require.Equal(t, "connected", <-events)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/S1/join", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)

	select {
	case name := <-events:
		assert.Equal(t, string(protocol.TypePlayerJoined), name)
	case <-ctx.Done():
		t.Fatal("no push received")
	}
}

func TestWebSocketRequestsAndPushes(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	id := createStartedSession(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("X-Player-ID", "alice")
	conn, _, err := websocket.Dial(ctx, server.URL+"/api/v1/sessions/"+id+"/ws", &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.CloseNow()

	send := func(msgType protocol.MessageType, requestID string, dominoID *model.DominoID) {
		env, err := protocol.NewRequest(msgType, requestID, dominoID)
		require.NoError(t, err)
		data, err := json.Marshal(env)
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
	}
	// readUntil returns the first envelope of the given type
	readUntil := func(msgType protocol.MessageType) *protocol.Envelope {
		for {
			_, data, err := conn.Read(ctx)
			require.NoError(t, err)
			var env protocol.Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Type == msgType {
				return &env
			}
		}
	}

	one := model.DominoID(1)
	send(protocol.TypeSelectDomino, "r1", &one)
	ack := readUntil(protocol.TypeAck)
	assert.Equal(t, "r1", ack.RequestID)

	zero := model.DominoID(0)
	send(protocol.TypeSelectDomino, "r2", &zero)
	move := readUntil(protocol.TypeMoveApplied)
	var applied protocol.MoveApplied
	require.NoError(t, json.Unmarshal(move.Payload, &applied))
	assert.Equal(t, "alice", applied.PlayerID)
	assert.Equal(t, 1, applied.DominoID)
	assert.True(t, applied.NewTrack)

	// Rejected requests come back to the sender as errors
	send(protocol.TypeDraw, "r3", nil)
	errEnv := readUntil(protocol.TypeError)
	assert.Equal(t, "r3", errEnv.RequestID)
	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(errEnv.Payload, &payload))
	assert.Equal(t, apierr.CodeAlreadyDrawn, payload.Code)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"v":2,"type":"draw"}`)))
	errEnv = readUntil(protocol.TypeError)
	require.NoError(t, json.Unmarshal(errEnv.Payload, &payload))
	assert.Equal(t, apierr.CodeInvalidRequest, payload.Code)

	// Closing the only connection disconnects the player and reverts their work
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool {
		session, err := ts.app.Storage.GetSession(context.Background(), model.SessionID(id))
		return err == nil && session.Disconnected["alice"]
	}, 2*time.Second, 10*time.Millisecond)

	session, err := ts.app.Storage.GetSession(context.Background(), model.SessionID(id))
	require.NoError(t, err)
	assert.Equal(t, []model.DominoID{1, 2, 3}, session.Hands["alice"].DominoIDs)
}

func TestRecordsNewestFirstAndByID(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	earlier := ts.app.MockClock.Now()
	require.NoError(t, ts.app.Storage.SaveGameRecord(ctx, testutil.SampleRecord("OLD", earlier)))
	require.NoError(t, ts.app.Storage.SaveGameRecord(ctx, testutil.SampleRecord("NEW", earlier.Add(time.Hour))))

	rr := ts.request(http.MethodGet, "/api/v1/records", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.GameRecordList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Records, 2)
	assert.Equal(t, "NEW", list.Records[0].SessionID)
	assert.Equal(t, "OLD", list.Records[1].SessionID)

	rr = ts.request(http.MethodGet, "/api/v1/records/OLD", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var record response.GameRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &record))
	assert.Equal(t, "OLD", record.SessionID)
	assert.Equal(t, 20, record.FinalTotals["bob"])

	rr = ts.request(http.MethodGet, "/api/v1/records/missing", nil, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeRecordNotFound, decodeError(t, rr).Code)
}

func TestViewCarriesTilesWithPurpose(t *testing.T) {
	ts := newTestServer(t)
	id := createStartedSession(t, ts)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	assert.Equal(t, []response.Tile{
		{ID: 0, Top: 0, Bottom: 0, Purpose: "engine"},
		{ID: 1, Top: 0, Bottom: 1, Purpose: "in_hand"},
		{ID: 2, Top: 0, Bottom: 2, Purpose: "in_hand"},
		{ID: 3, Top: 0, Bottom: 3, Purpose: "in_hand"},
	}, view.Tiles)
}

func TestLastPlayerLeavingClosesSession(t *testing.T) {
	ts := newTestServer(t)
	id := createStartedSession(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/leave", nil, "bob")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/leave", nil, "alice")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeSessionNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Zero(t, decodeHealth(t, rr).Sessions)
}
