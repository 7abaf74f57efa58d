package push

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/dominotrain/internal/api/apierr"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// readLimit bounds a single request envelope
const readLimit = 4096

// Dispatcher runs commands against a session
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID model.SessionID, cmd game.Command) (*model.Session, error)
}

// wsConn is one player's websocket: requests in, pushes and replies out
type wsConn struct {
	conn       *websocket.Conn
	hub        *Hub
	client     *Client
	dispatcher Dispatcher
	replies    chan message
	logger     *slog.Logger
}

// ServeWS upgrades the request and serves the player until the socket
// closes. Closing the player's last connection disconnects them from the session.
func ServeWS(w http.ResponseWriter, r *http.Request, manager *HubManager, sessionID model.SessionID, playerID model.PlayerID, dispatcher Dispatcher, originPatterns []string, logger *slog.Logger) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
	if err != nil {
		logger.Warn("websocket accept failed",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	client := NewClient(playerID, "ws")
	ws := &wsConn{
		conn:       conn,
		hub:        manager.Attach(sessionID, client),
		client:     client,
		dispatcher: dispatcher,
		replies:    make(chan message, 16),
		logger: logger.With(
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID)),
		),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go ws.writeLoop(ctx, cancel)
	ws.readLoop(ctx)

	if manager.Detach(ws.hub, ws.client) {
		ws.disconnect()
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (ws *wsConn) readLoop(ctx context.Context) {
	for {
		typ, data, err := ws.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				ws.logger.Debug("websocket closed")
			} else {
				ws.logger.Info("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		if typ != websocket.MessageText {
			ws.replyError("", protocol.ErrMalformed)
			continue
		}
		ws.handle(ctx, data)
	}
}

func (ws *wsConn) handle(ctx context.Context, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		ws.replyError("", err)
		return
	}
	cmd, err := env.Command(ws.client.playerID)
	if err != nil {
		ws.replyError(env.RequestID, err)
		return
	}
	if _, err := ws.dispatcher.Dispatch(ctx, ws.hub.sessionID, cmd); err != nil {
		ws.replyError(env.RequestID, err)
		return
	}
	ack, err := protocol.NewEnvelope(protocol.TypeAck, env.RequestID, nil)
	if err != nil {
		return
	}
	ws.reply(ack)
}

func (ws *wsConn) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ws.client.send:
			if !ok {
				return
			}
			if err := ws.write(ctx, msg.data); err != nil {
				return
			}
		case msg := <-ws.replies:
			if err := ws.write(ctx, msg.data); err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, done := context.WithTimeout(ctx, writeWait)
			err := ws.conn.Ping(pingCtx)
			done()
			if err != nil {
				ws.logger.Info("websocket ping failed", slog.String("error", err.Error()))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (ws *wsConn) write(ctx context.Context, data []byte) error {
	writeCtx, done := context.WithTimeout(ctx, writeWait)
	defer done()
	if err := ws.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		ws.logger.Info("websocket write failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (ws *wsConn) reply(env *protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		ws.logger.Error("websocket failed to marshal reply", slog.String("error", err.Error()))
		return
	}
	select {
	case ws.replies <- message{msgType: string(env.Type), data: data}:
	default:
		ws.logger.Warn("websocket reply dropped, buffer full", slog.String("type", string(env.Type)))
	}
}

func (ws *wsConn) replyError(requestID string, err error) {
	_, apiErr := apierr.Describe(err)
	ws.reply(protocol.NewError(requestID, apiErr.Code, apiErr.Message))
}

// disconnect tells the state machine the player has gone
func (ws *wsConn) disconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	cmd := game.Command{Kind: game.CommandDisconnect, PlayerID: ws.client.playerID}
	_, err := ws.dispatcher.Dispatch(ctx, ws.hub.sessionID, cmd)
	// Leaving a closed session is not a failure
	if err != nil && !errors.Is(err, model.ErrNotInSession) && !errors.Is(err, model.ErrSessionNotFound) {
		ws.logger.Warn("disconnect on websocket close failed", slog.String("error", err.Error()))
	}
}
