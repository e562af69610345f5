// Package board holds the two parallel grids the server broadcasts: the unit
// grid (monsters and sorceries in flight) and the land grid (terrain).
package board

import (
	"encoding/json"
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// Grid is a rows x cols matrix of cards; a nil entry is an empty cell.
// Grid[x][y] addresses row x, column y.
type Grid [][]card.Card

// NewGrid returns an empty grid of the given dimensions.
func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for x := range g {
		g[x] = make([]card.Card, cols)
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns of the first row.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether p lies on the grid.
func (g Grid) InBounds(p grid.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Rows() && p.Y < g.Cols()
}

// At returns the card at p, nil when empty or out of bounds.
func (g Grid) At(p grid.Pos) card.Card {
	if p.X < 0 || p.X >= len(g) {
		return nil
	}
	row := g[p.X]
	if p.Y < 0 || p.Y >= len(row) {
		return nil
	}
	return row[p.Y]
}

// Occupied reports whether p holds a card.
func (g Grid) Occupied(p grid.Pos) bool {
	return g.At(p) != nil
}

// Clone returns a copy of the grid structure. Cards are shared; they are immutable.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for x, row := range g {
		out[x] = append([]card.Card(nil), row...)
	}
	return out
}

// UnmarshalJSON decodes a 2D array of wire cards where null marks an empty
// cell. Cards decode leniently; only a malformed grid shape is an error.
func (g *Grid) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = nil
		return nil
	}
	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("decode grid: %w", err)
	}
	out := make(Grid, len(rows))
	for x, row := range rows {
		out[x] = make([]card.Card, len(row))
		for y, raw := range row {
			out[x][y] = card.DecodeLenient(raw)
		}
	}
	*g = out
	return nil
}

// Unknowns returns the occupants of g that could not be interpreted.
func (g Grid) Unknowns() []*card.Unknown {
	var out []*card.Unknown
	for _, row := range g {
		out = append(out, card.List(row).Unknowns()...)
	}
	return out
}

// Board pairs the unit grid with the land grid.
type Board struct {
	Units Grid
	Lands Grid
}

// Rows returns the board height, taken from the unit grid.
func (b Board) Rows() int { return b.Units.Rows() }

// Cols returns the board width, taken from the unit grid.
func (b Board) Cols() int { return b.Units.Cols() }

// InBounds reports whether p lies on the board.
func (b Board) InBounds(p grid.Pos) bool { return b.Units.InBounds(p) }

// Empty reports whether p is free on both layers.
func (b Board) Empty(p grid.Pos) bool {
	return !b.Units.Occupied(p) && !b.Lands.Occupied(p)
}

// Cells calls fn for every cell in row-major order.
func (b Board) Cells(fn func(p grid.Pos)) {
	for x := 0; x < b.Rows(); x++ {
		for y := 0; y < b.Cols(); y++ {
			fn(grid.Pos{X: x, Y: y})
		}
	}
}

// Clone copies both layers.
func (b Board) Clone() Board {
	return Board{Units: b.Units.Clone(), Lands: b.Lands.Clone()}
}

// HomeRow is the row a seat summons into: the row nearest that seat.
// Seat one plays "up" the board, so its home row is the last one.
func HomeRow(seat grid.Seat, rows int) int {
	if seat == grid.SeatOne {
		return rows - 1
	}
	return 0
}

// FarRow is the opponent's home row, from which a unit may attack directly.
func FarRow(seat grid.Seat, rows int) int {
	return HomeRow(seat.Opponent(), rows)
}

// Relocate returns a copy of the unit grid with the card at from moved to to.
// The board is returned unchanged when from is empty or either cell is off grid.
func (b Board) Relocate(from, to grid.Pos) (Board, bool) {
	if !b.Units.InBounds(from) || !b.Units.InBounds(to) {
		return b, false
	}
	moving := b.Units.At(from)
	if moving == nil {
		return b, false
	}
	out := b.Clone()
	out.Units[from.X][from.Y] = nil
	out.Units[to.X][to.Y] = moving
	return out, true
}
