package push

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// Broadcaster turns state machine events into push envelopes
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster implements Publisher
var _ game.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "push-broadcaster")),
	}
}

// Publish delivers events to the session's connected players. Sessions with
// nobody listening are skipped. A closed session's hub is removed once its
// last events are queued.
func (b *Broadcaster) Publish(sessionID model.SessionID, events []model.Event) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}

	closed := false
	for _, event := range events {
		env, err := protocol.FromEvent(event)
		if err != nil {
			b.logger.Error("push failed to encode event",
				slog.String("session_id", string(sessionID)),
				slog.String("type", string(event.Type)),
				slog.String("error", err.Error()))
			continue
		}
		data, err := json.Marshal(env)
		if err != nil {
			b.logger.Error("push failed to marshal envelope",
				slog.String("session_id", string(sessionID)),
				slog.String("type", string(event.Type)),
				slog.String("error", err.Error()))
			continue
		}
		hub.Send(event.Recipient, string(env.Type), data)
		if event.Type == model.EventSessionClosed {
			closed = true
		}
	}
	if closed {
		b.hubManager.RemoveHub(sessionID)
	}
}
