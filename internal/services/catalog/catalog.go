package catalog

import (
	"fmt"

	"github.com/mcoot/dominotrain/internal/model"
)

// Catalog is the fixed double-twelve domino set
type Catalog struct {
	dominoes []model.Domino
	engines  []model.DominoID
}

// New generates the set. Ids follow the (top, bottom) nested loop order,
// so 0 is the double blank and 90 the double twelve.
func New() *Catalog {
	c := &Catalog{
		dominoes: make([]model.Domino, 0, model.SetSize),
		engines:  make([]model.DominoID, 0, model.EngineCount),
	}
	id := model.DominoID(0)
	for i := 0; i <= model.MaxPips; i++ {
		for j := i; j <= model.MaxPips; j++ {
			d := model.Domino{ID: id, Top: i, Bottom: j}
			c.dominoes = append(c.dominoes, d)
			if d.IsDouble() {
				c.engines = append(c.engines, id)
			}
			id++
		}
	}
	return c
}

// Size returns the number of dominoes in the set
func (c *Catalog) Size() int {
	return len(c.dominoes)
}

// Lookup returns the domino with the given id
func (c *Catalog) Lookup(id model.DominoID) (model.Domino, error) {
	if id < 0 || int(id) >= len(c.dominoes) {
		return model.Domino{}, fmt.Errorf("%w: %d", model.ErrDominoNotFound, id)
	}
	return c.dominoes[id], nil
}

// All returns every domino in id order
func (c *Catalog) All() []model.Domino {
	return append([]model.Domino(nil), c.dominoes...)
}

// Engines returns the doubles in increasing pip order
func (c *Catalog) Engines() []model.DominoID {
	return append([]model.DominoID(nil), c.engines...)
}

// EngineForRound returns the engine that roots the given 1-based round
func (c *Catalog) EngineForRound(round int) (model.DominoID, error) {
	if round < 1 || round > len(c.engines) {
		return 0, fmt.Errorf("%w: no engine for round %d", model.ErrDominoNotFound, round)
	}
	return c.engines[round-1], nil
}

// IDsExcept returns every id in the set other than the excluded one
func (c *Catalog) IDsExcept(excluded model.DominoID) []model.DominoID {
	ids := make([]model.DominoID, 0, len(c.dominoes)-1)
	for _, d := range c.dominoes {
		if d.ID != excluded {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
