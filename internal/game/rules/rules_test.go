package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
)

func emptyBoard(rows, cols int) board.Board {
	return board.Board{Units: board.NewGrid(rows, cols), Lands: board.NewGrid(rows, cols)}
}

func monster(id string, owner grid.Seat, mv card.Movement) *card.Monster {
	return &card.Monster{Info: card.Info{ID: id, Owner: owner, Mana: 2}, Movement: mv}
}

func pos(x, y int) grid.Pos { return grid.Pos{X: x, Y: y} }

func TestMoveHighlights_ForwardTwoOnEmptyBoard(t *testing.T) {
	b := emptyBoard(6, 6)
	m := monster("m1", grid.SeatOne, card.Movement{grid.Forward: 2})
	b.Units[5][2] = m

	got := MoveHighlights(pos(5, 2), grid.SeatOne, m.Movement, b.Units)

	assert.Equal(t, HighlightMap{
		"4-2": {Status: StatusFree},
		"3-2": {Status: StatusFree},
	}, got)
}

func TestMoveHighlights_SeatTwoIsMirrored(t *testing.T) {
	b := emptyBoard(6, 6)
	m := monster("m1", grid.SeatTwo, card.Movement{grid.Forward: 1, grid.Left: 1})
	b.Units[0][2] = m

	got := MoveHighlights(pos(0, 2), grid.SeatTwo, m.Movement, b.Units)

	assert.Equal(t, []grid.Pos{pos(0, 3), pos(1, 2)}, got.Positions())
}

func TestMoveHighlights_RayStopsAtOccupant(t *testing.T) {
	b := emptyBoard(6, 6)
	m := monster("m1", grid.SeatOne, card.Movement{grid.Forward: card.RangeAny, grid.Right: card.RangeAny})
	b.Units[5][0] = m
	b.Units[2][0] = monster("enemy", grid.SeatTwo, nil)
	b.Units[5][3] = monster("ally", grid.SeatOne, nil)

	got := MoveHighlights(pos(5, 0), grid.SeatOne, m.Movement, b.Units)

	assert.Equal(t, []grid.Pos{pos(2, 0), pos(3, 0), pos(4, 0), pos(5, 1), pos(5, 2)}, got.Positions())
	assert.False(t, got.Has(pos(5, 3)), "allied occupant is never a target")
	assert.False(t, got.Has(pos(1, 0)), "ray must stop at the enemy")
}

func TestMoveHighlights_AnyReachesEdge(t *testing.T) {
	b := emptyBoard(6, 6)
	m := monster("m1", grid.SeatOne, card.Movement{grid.Forward: card.RangeAny})
	b.Units[5][0] = m

	got := MoveHighlights(pos(5, 0), grid.SeatOne, m.Movement, b.Units)
	assert.Len(t, got, 5)
	assert.True(t, got.Has(pos(0, 0)))
}

func TestEvaluateNeeds(t *testing.T) {
	sorcery := &card.Sorcery{
		Info:  card.Info{ID: "s1", Owner: grid.SeatOne, Mana: 3, Role: "red"},
		Needs: []grid.Direction{grid.Forward},
	}
	target := pos(3, 2)

	tests := []struct {
		name  string
		setup func(b board.Board)
		want  NeedResult
	}{
		{
			name:  "nothing adjacent",
			setup: func(board.Board) {},
			want:  NeedUnsatisfied,
		},
		{
			name: "allied monster stepping back with matching role",
			setup: func(b board.Board) {
				m := monster("m", grid.SeatOne, card.Movement{grid.Back: 1})
				m.Role = "red"
				b.Units[2][2] = m
			},
			want: NeedFree,
		},
		{
			name: "allied monster with different role",
			setup: func(b board.Board) {
				m := monster("m", grid.SeatOne, card.Movement{grid.Back: card.RangeAny})
				m.Role = "blue"
				b.Units[2][2] = m
			},
			want: NeedPaid,
		},
		{
			name: "allied monster whose back range cannot step",
			setup: func(b board.Board) {
				b.Units[2][2] = monster("m", grid.SeatOne, card.Movement{grid.Back: 3})
			},
			want: NeedUnsatisfied,
		},
		{
			name: "enemy monster",
			setup: func(b board.Board) {
				b.Units[2][2] = monster("m", grid.SeatTwo, card.Movement{grid.Back: 1})
			},
			want: NeedUnsatisfied,
		},
		{
			name: "allied land needing the flipped direction",
			setup: func(b board.Board) {
				b.Lands[2][2] = &card.Land{
					Info:  card.Info{ID: "l", Owner: grid.SeatOne},
					Needs: []grid.Direction{grid.Back},
				}
			},
			want: NeedPaid,
		},
		{
			name: "allied land needing another direction",
			setup: func(b board.Board) {
				b.Lands[2][2] = &card.Land{
					Info:  card.Info{ID: "l", Owner: grid.SeatOne, Role: "red"},
					Needs: []grid.Direction{grid.Forward},
				}
			},
			want: NeedUnsatisfied,
		},
		{
			name: "monster fails, land underneath satisfies",
			setup: func(b board.Board) {
				b.Units[2][2] = monster("m", grid.SeatOne, card.Movement{grid.Forward: 1})
				b.Lands[2][2] = &card.Land{
					Info:  card.Info{ID: "l", Owner: grid.SeatOne, Role: "red"},
					Needs: []grid.Direction{grid.Back},
				}
			},
			want: NeedFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := emptyBoard(6, 6)
			tt.setup(b)
			assert.Equal(t, tt.want, EvaluateNeeds(sorcery, target, grid.SeatOne, b))
		})
	}
}

func TestEvaluateNeeds_EmptyRoleNeverFree(t *testing.T) {
	b := emptyBoard(6, 6)
	b.Units[2][2] = monster("m", grid.SeatOne, card.Movement{grid.Back: 1})
	s := &card.Sorcery{Info: card.Info{Owner: grid.SeatOne}, Needs: []grid.Direction{grid.Forward}}
	assert.Equal(t, NeedPaid, EvaluateNeeds(s, pos(3, 2), grid.SeatOne, b))
}

func TestEvaluateNeeds_OffBoardNeighbour(t *testing.T) {
	b := emptyBoard(6, 6)
	s := &card.Sorcery{Info: card.Info{Owner: grid.SeatOne}, Needs: []grid.Direction{grid.Forward}}
	assert.Equal(t, NeedUnsatisfied, EvaluateNeeds(s, pos(0, 0), grid.SeatOne, b))
}

func TestEvaluateNeeds_MixedDirections(t *testing.T) {
	b := emptyBoard(6, 6)
	red := monster("r", grid.SeatOne, card.Movement{grid.Back: 1})
	red.Role = "red"
	blue := monster("b", grid.SeatOne, card.Movement{grid.Right: 1})
	blue.Role = "blue"
	b.Units[2][2] = red
	b.Units[3][1] = blue

	s := &card.Sorcery{
		Info:  card.Info{Owner: grid.SeatOne, Role: "red"},
		Needs: []grid.Direction{grid.Forward, grid.Left},
	}
	assert.Equal(t, NeedPaid, EvaluateNeeds(s, pos(3, 2), grid.SeatOne, b))
}

func TestEvaluateNeeds_SeatTwoFlipsNeighbour(t *testing.T) {
	b := emptyBoard(6, 6)
	m := monster("m", grid.SeatTwo, card.Movement{grid.Back: 2})
	b.Units[3][2] = m
	s := &card.Sorcery{Info: card.Info{Owner: grid.SeatTwo}, Needs: []grid.Direction{grid.Forward}}

	assert.Equal(t, NeedPaid, EvaluateNeeds(s, pos(2, 2), grid.SeatTwo, b))
	assert.Equal(t, NeedUnsatisfied, EvaluateNeeds(s, pos(4, 2), grid.SeatTwo, b))
}

func TestPlacementHighlights_RoleMatchIsFree(t *testing.T) {
	b := emptyBoard(6, 6)
	b.Lands[2][2] = &card.Land{
		Info:  card.Info{ID: "l", Owner: grid.SeatOne, Role: "red"},
		Needs: []grid.Direction{grid.Back},
	}
	s := &card.Sorcery{
		Info:  card.Info{ID: "s", Owner: grid.SeatOne, Mana: 3, Role: "red"},
		Needs: []grid.Direction{grid.Forward},
	}

	got := PlacementHighlights(s, grid.SeatOne, b, mana.NewPool(nil))
	assert.Equal(t, HighlightMap{"3-2": {Status: StatusFree, Cost: 0}}, got)
}

func TestPlacementHighlights_RoleMismatchDependsOnMana(t *testing.T) {
	b := emptyBoard(6, 6)
	b.Lands[2][2] = &card.Land{
		Info:  card.Info{ID: "l", Owner: grid.SeatOne, Role: "blue"},
		Needs: []grid.Direction{grid.Back},
	}
	s := &card.Sorcery{
		Info:  card.Info{ID: "s", Owner: grid.SeatOne, Mana: 3, Role: "red"},
		Needs: []grid.Direction{grid.Forward},
	}

	rich := PlacementHighlights(s, grid.SeatOne, b, mana.NewPool(map[grid.Seat]int{grid.SeatOne: 3}))
	assert.Equal(t, HighlightMap{"3-2": {Status: StatusPayable, Cost: 3}}, rich)

	poor := PlacementHighlights(s, grid.SeatOne, b, mana.NewPool(map[grid.Seat]int{grid.SeatOne: 2}))
	assert.Equal(t, HighlightMap{"3-2": {Status: StatusInsufficient, Cost: 3}}, poor)
}

func TestPlacementHighlights_LandsSkipOccupiedCells(t *testing.T) {
	b := emptyBoard(3, 3)
	b.Units[1][1] = monster("m", grid.SeatTwo, nil)
	b.Lands[0][0] = &card.Land{Info: card.Info{ID: "old", Owner: grid.SeatOne}}
	l := &card.Land{Info: card.Info{ID: "new", Owner: grid.SeatOne, Mana: 1}}

	got := PlacementHighlights(l, grid.SeatOne, b, mana.NewPool(nil))
	assert.Len(t, got, 7)
	assert.False(t, got.Has(pos(1, 1)))
	assert.False(t, got.Has(pos(0, 0)))

	// sorceries ignore occupancy
	s := &card.Sorcery{Info: card.Info{ID: "s", Owner: grid.SeatOne}}
	assert.Len(t, PlacementHighlights(s, grid.SeatOne, b, mana.NewPool(nil)), 9)
}

func TestSummonHighlights(t *testing.T) {
	b := emptyBoard(6, 6)
	b.Units[5][4] = monster("blocker", grid.SeatTwo, nil)

	got := SummonHighlights(grid.SeatOne, 3, b.Units)
	require.Len(t, got, 5)
	for _, p := range got.Positions() {
		assert.Equal(t, 5, p.X)
		h, _ := got.At(p)
		assert.Equal(t, Highlight{Status: StatusPayable, Cost: 3}, h)
	}
	assert.False(t, got.Has(pos(5, 4)))

	other := SummonHighlights(grid.SeatTwo, 3, b.Units)
	require.Len(t, other, 6)
	for _, p := range other.Positions() {
		assert.Equal(t, 0, p.X)
		h, _ := other.At(p)
		assert.Equal(t, Highlight{Status: StatusPayable, Cost: 3}, h)
	}

	assert.Empty(t, SummonHighlights(grid.SeatOne, 3, nil))
}

func TestHighlightsFor_SummonIgnoresBalance(t *testing.T) {
	b := emptyBoard(6, 6)
	broke := mana.NewPool(map[grid.Seat]int{grid.SeatOne: 0})
	m := &card.Monster{Info: card.Info{ID: "m", Owner: grid.SeatOne, Mana: 3}}

	got := HighlightsFor(m, grid.SeatOne, b, broke)
	require.Len(t, got, 6)
	h, ok := got.At(pos(5, 4))
	require.True(t, ok)
	assert.Equal(t, Highlight{Status: StatusPayable, Cost: 3}, h)
	assert.Equal(t, CardPayable, Classify(m, grid.SeatOne, b, broke))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   HighlightMap
		want CardStatus
	}{
		{"empty", HighlightMap{}, CardUnplayable},
		{"nil", nil, CardUnplayable},
		{"only insufficient", HighlightMap{"0-0": {Status: StatusInsufficient, Cost: 4}}, CardInsufficient},
		{"payable beats insufficient", HighlightMap{
			"0-0": {Status: StatusInsufficient, Cost: 4},
			"0-1": {Status: StatusPayable, Cost: 1},
		}, CardPayable},
		{"free beats everything", HighlightMap{
			"0-0": {Status: StatusPayable, Cost: 4},
			"0-1": {Status: StatusFree},
			"0-2": {Status: StatusInsufficient, Cost: 4},
		}, CardFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	b := emptyBoard(6, 6)
	pool := mana.NewPool(map[grid.Seat]int{grid.SeatOne: 1})

	assert.Equal(t, CardUnplayable, Classify(nil, grid.SeatOne, b, pool))
	assert.Equal(t, CardPayable, Classify(monster("m", grid.SeatOne, nil), grid.SeatOne, b, pool))

	s := &card.Sorcery{Info: card.Info{Owner: grid.SeatOne, Mana: 1}, Needs: []grid.Direction{grid.Forward}}
	assert.Equal(t, CardUnplayable, Classify(s, grid.SeatOne, b, pool))
}
