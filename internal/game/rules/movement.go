package rules

import (
	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// MoveHighlights returns every cell the monster at origin can reach this
// action. Each direction is walked as a ray up to the unit's range ("any"
// walks up to the larger board dimension). A ray stops at the first occupied
// cell, which is included only when it holds an opposing card. Every reached
// cell is FREE.
func MoveHighlights(origin grid.Pos, seat grid.Seat, movement card.Movement, units board.Grid) HighlightMap {
	out := make(HighlightMap)
	bound := units.Rows()
	if c := units.Cols(); c > bound {
		bound = c
	}

	for _, d := range grid.AllDirections {
		steps := movement.Range(d).Steps(bound)
		if steps <= 0 {
			continue
		}
		v, ok := grid.VectorFor(seat, d)
		if !ok {
			continue
		}
		cur := origin
		for i := 0; i < steps; i++ {
			cur = cur.Add(v)
			if !units.InBounds(cur) {
				break
			}
			occupant := units.At(cur)
			if occupant == nil {
				out.Set(cur, Highlight{Status: StatusFree})
				continue
			}
			if occupant.Base().Owner != seat {
				out.Set(cur, Highlight{Status: StatusFree})
			}
			break
		}
	}
	return out
}
