package rules

import (
	"sort"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// CellStatus classifies one highlighted cell.
type CellStatus string

const (
	// StatusFree means the action costs nothing.
	StatusFree CellStatus = "FREE"
	// StatusPayable means the action costs mana the seat currently has.
	StatusPayable CellStatus = "PAYABLE"
	// StatusInsufficient means the action is otherwise legal but the seat is short on mana.
	StatusInsufficient CellStatus = "INSUFFICIENT"
)

// Highlight is the predicted status and cost of acting on one cell.
type Highlight struct {
	Status CellStatus
	Cost   int
}

// HighlightMap maps "x-y" cell keys to highlights. Cells absent from the map
// are not legal targets.
type HighlightMap map[string]Highlight

// Set records h for p.
func (m HighlightMap) Set(p grid.Pos, h Highlight) {
	m[p.Key()] = h
}

// At returns the highlight for p.
func (m HighlightMap) At(p grid.Pos) (Highlight, bool) {
	h, ok := m[p.Key()]
	return h, ok
}

// Has reports whether p is highlighted.
func (m HighlightMap) Has(p grid.Pos) bool {
	_, ok := m[p.Key()]
	return ok
}

// Positions returns the highlighted cells sorted by row then column.
func (m HighlightMap) Positions() []grid.Pos {
	out := make([]grid.Pos, 0, len(m))
	for k := range m {
		p, err := grid.ParseKey(k)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
