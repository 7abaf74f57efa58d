package model

import "sort"

// Hand is the set of dominoes a player holds, kept in id order
type Hand struct {
	DominoIDs       []DominoID
	HasDrawnInitial bool // initial deal taken for the current round
}

// NewHand creates an empty hand
func NewHand() *Hand {
	return &Hand{DominoIDs: []DominoID{}}
}

// Len returns the number of dominoes held
func (h *Hand) Len() int {
	return len(h.DominoIDs)
}

// IsEmpty returns true once the player has played out
func (h *Hand) IsEmpty() bool {
	return len(h.DominoIDs) == 0
}

// Contains returns true if the domino is held
func (h *Hand) Contains(id DominoID) bool {
	i := h.search(id)
	return i < len(h.DominoIDs) && h.DominoIDs[i] == id
}

// Add inserts the domino, ignoring duplicates
func (h *Hand) Add(id DominoID) {
	i := h.search(id)
	if i < len(h.DominoIDs) && h.DominoIDs[i] == id {
		return
	}
	h.DominoIDs = append(h.DominoIDs, 0)
	copy(h.DominoIDs[i+1:], h.DominoIDs[i:])
	h.DominoIDs[i] = id
}

// Remove takes the domino out of the hand
func (h *Hand) Remove(id DominoID) bool {
	i := h.search(id)
	if i >= len(h.DominoIDs) || h.DominoIDs[i] != id {
		return false
	}
	h.DominoIDs = append(h.DominoIDs[:i], h.DominoIDs[i+1:]...)
	return true
}

// Clone returns a deep copy of the hand
func (h *Hand) Clone() *Hand {
	return &Hand{
		DominoIDs:       append([]DominoID{}, h.DominoIDs...),
		HasDrawnInitial: h.HasDrawnInitial,
	}
}

func (h *Hand) search(id DominoID) int {
	return sort.Search(len(h.DominoIDs), func(i int) bool { return h.DominoIDs[i] >= id })
}
