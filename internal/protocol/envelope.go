// Package protocol defines the versioned wire messages exchanged with
// players: request envelopes coming in and push envelopes going out.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// Version is the only envelope version this server speaks
const Version = 1

// MessageType names the payload carried by an envelope
type MessageType string

// Requests
const (
	TypeDraw              MessageType = "draw"
	TypeSelectDomino      MessageType = "select_domino"
	TypeEndTurn           MessageType = "end_turn"
	TypeUndo              MessageType = "undo"
	TypeReadyForNextRound MessageType = "ready_for_next_round"
)

// Pushes
const (
	TypePlayerJoined       MessageType = "player_joined"
	TypePlayerDisconnected MessageType = "player_disconnected"
	TypeSessionStarted     MessageType = "session_started"
	TypeSessionClosed      MessageType = "session_closed"
	TypeStationUpdated     MessageType = "station_updated"
	TypeTurnChanged        MessageType = "turn_changed"
	TypeHandUpdated        MessageType = "hand_updated"
	TypeSelectionChanged   MessageType = "selection_changed"
	TypeMoveApplied        MessageType = "move_applied"
	TypeMoveUndone         MessageType = "move_undone"
	TypePlayerSignalled    MessageType = "player_signalled"
	TypeRoundEnded         MessageType = "round_ended"
	TypeGameEnded          MessageType = "game_ended"
	TypeAck                MessageType = "ack"
	TypeError              MessageType = "error"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	ErrUnknownType        = errors.New("unknown message type")
	ErrMalformed          = errors.New("malformed message")
)

// Envelope wraps every message on the wire
type Envelope struct {
	V         int             `json:"v"`
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// DominoRequest is the payload of select_domino and undo
type DominoRequest struct {
	DominoID *int `json:"domino_id"`
}

// ErrorPayload reports a rejected request to the requester only
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Decode parses and validates a request envelope
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.V != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.V)
	}
	return &env, nil
}

// Command converts a request envelope into a state machine command
func (e *Envelope) Command(playerID model.PlayerID) (game.Command, error) {
	cmd := game.Command{PlayerID: playerID}
	switch e.Type {
	case TypeDraw:
		cmd.Kind = game.CommandDraw
	case TypeEndTurn:
		cmd.Kind = game.CommandEndTurn
	case TypeReadyForNextRound:
		cmd.Kind = game.CommandReady
	case TypeSelectDomino:
		cmd.Kind = game.CommandSelect
	case TypeUndo:
		cmd.Kind = game.CommandUndo
	default:
		return game.Command{}, fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}

	if cmd.Kind == game.CommandSelect || cmd.Kind == game.CommandUndo {
		id, err := e.dominoID()
		if err != nil {
			return game.Command{}, err
		}
		cmd.DominoID = id
	}
	return cmd, nil
}

func (e *Envelope) dominoID() (model.DominoID, error) {
	var req DominoRequest
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &req); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if req.DominoID == nil {
		return 0, fmt.Errorf("%w: %s needs a domino_id", ErrMalformed, e.Type)
	}
	return model.DominoID(*req.DominoID), nil
}

// NewEnvelope marshals a payload into a push envelope
func NewEnvelope(msgType MessageType, requestID string, payload any) (*Envelope, error) {
	env := &Envelope{V: Version, Type: msgType, RequestID: requestID}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = data
	}
	return env, nil
}

// NewRequest builds a request envelope, for clients
func NewRequest(msgType MessageType, requestID string, dominoID *model.DominoID) (*Envelope, error) {
	if dominoID == nil {
		return NewEnvelope(msgType, requestID, nil)
	}
	id := int(*dominoID)
	return NewEnvelope(msgType, requestID, DominoRequest{DominoID: &id})
}

// NewError builds an error push for the requester
func NewError(requestID, code, message string) *Envelope {
	env, _ := NewEnvelope(TypeError, requestID, ErrorPayload{Code: code, Message: message})
	return env
}
