package rules

import (
	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
)

// PlacementHighlights evaluates c's needs at every cell of the board.
//
// Lands skip any cell occupied on either layer; sorceries may target any
// cell. A fully role-matched cell is FREE at cost 0. A paid cell costs the
// card's full mana and is PAYABLE or INSUFFICIENT against the seat's balance.
// Unsatisfied cells are left out.
func PlacementHighlights(c card.Supported, seat grid.Seat, b board.Board, pool *mana.Pool) HighlightMap {
	out := make(HighlightMap)
	if c == nil {
		return out
	}
	isLand := c.Kind() == card.KindLand
	cost := c.Base().Mana
	balance := pool.Balance(seat)

	b.Cells(func(p grid.Pos) {
		if isLand && !b.Empty(p) {
			return
		}
		switch EvaluateNeeds(c, p, seat, b) {
		case NeedFree:
			out.Set(p, Highlight{Status: StatusFree, Cost: 0})
		case NeedPaid:
			out.Set(p, Highlight{Status: paidStatus(cost, balance), Cost: cost})
		}
	})
	return out
}

func paidStatus(cost, balance int) CellStatus {
	if balance >= cost {
		return StatusPayable
	}
	return StatusInsufficient
}
