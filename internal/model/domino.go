package model

// DominoID identifies a domino by its position in the generated set
type DominoID int

// Set dimensions for a double-twelve set
const (
	MaxPips     = 12
	SetSize     = (MaxPips + 1) * (MaxPips + 2) / 2 // 91
	EngineCount = MaxPips + 1
)

// Purpose describes where a domino currently lives. Informational only.
type Purpose string

const (
	PurposeInHand  Purpose = "in_hand"
	PurposeEngine  Purpose = "engine"
	PurposeOnChain Purpose = "on_chain"
	PurposeInPile  Purpose = "in_pile"
)

// Domino is an immutable tile from the set
type Domino struct {
	ID     DominoID
	Top    int
	Bottom int
}

// IsDouble reports whether both faces carry the same pip count
func (d Domino) IsDouble() bool {
	return d.Top == d.Bottom
}

// Pips returns the total pip count used for scoring
func (d Domino) Pips() int {
	return d.Top + d.Bottom
}
