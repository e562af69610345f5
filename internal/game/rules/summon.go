package rules

import (
	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// SummonHighlights returns every empty unit cell on seat's home row, each
// PAYABLE at the card's full cost. The balance is checked when the summon is
// attempted, not here.
func SummonHighlights(seat grid.Seat, cost int, units board.Grid) HighlightMap {
	out := make(HighlightMap)
	rows := units.Rows()
	if rows == 0 {
		return out
	}
	row := board.HomeRow(seat, rows)
	for col := 0; col < units.Cols(); col++ {
		p := grid.Pos{X: row, Y: col}
		if units.Occupied(p) {
			continue
		}
		out.Set(p, Highlight{Status: StatusPayable, Cost: cost})
	}
	return out
}
