package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandKeepsIDOrder(t *testing.T) {
	h := NewHand()
	h.Add(9)
	h.Add(3)
	h.Add(5)
	h.Add(3)

	assert.Equal(t, []DominoID{3, 5, 9}, h.DominoIDs)
	assert.True(t, h.Contains(5))
	assert.False(t, h.Contains(4))
}

func TestHandRemoveAndReAddRestoresState(t *testing.T) {
	h := NewHand()
	for _, id := range []DominoID{1, 4, 7} {
		h.Add(id)
	}
	before := h.Clone()

	assert.True(t, h.Remove(4))
	assert.False(t, h.Remove(4))
	h.Add(4)

	assert.Equal(t, before, h)
}

func TestTurnStatusesRegisterAndReset(t *testing.T) {
	statuses := TurnStatuses{}

	statuses.RegisterNewTrack("alice", 12)
	status := statuses.Get("alice")
	assert.True(t, status.HasMadeMoveThisTurn)
	assert.True(t, status.HasAddedNewTrackThisTurn)
	assert.True(t, status.HasEverLaidFirstTrack)
	assert.True(t, status.IsLastPlayed(12))

	statuses.RegisterMove("alice", 14)
	assert.True(t, status.IsLastPlayed(14))
	assert.False(t, status.IsLastPlayed(12))

	statuses.RegisterDraw("bob")
	statuses.ResetAll()

	assert.Equal(t, TurnStatus{HasEverLaidFirstTrack: true}, *statuses.Get("alice"))
	assert.Equal(t, TurnStatus{}, *statuses.Get("bob"))
}

func TestReadySetIgnoresDuplicates(t *testing.T) {
	ready := ReadySet{}

	assert.True(t, ready.Add("alice"))
	assert.False(t, ready.Add("alice"))
	assert.False(t, ready.Covers([]PlayerID{"alice", "bob"}))
	assert.True(t, ready.Add("bob"))
	assert.True(t, ready.Covers([]PlayerID{"alice", "bob"}))
}
