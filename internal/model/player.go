package model

// PlayerID identifies a player. Identity is established by the caller's
// authentication layer; the session trusts it.
type PlayerID string

// PlayerPtr returns a pointer to a copy of the id, for optional owner fields
func PlayerPtr(id PlayerID) *PlayerID {
	return &id
}
