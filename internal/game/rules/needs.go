package rules

import (
	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// NeedResult is the ternary outcome of evaluating needs. The numeric values
// match the server's evaluator and must not change.
type NeedResult int

const (
	// NeedUnsatisfied means at least one direction has no supporter.
	NeedUnsatisfied NeedResult = 0
	// NeedPaid means every direction is supported but not all by role-matching supporters.
	NeedPaid NeedResult = 1
	// NeedFree means every direction is supported by a role-matching supporter.
	NeedFree NeedResult = 2
)

func (r NeedResult) String() string {
	switch r {
	case NeedFree:
		return "free"
	case NeedPaid:
		return "paid"
	default:
		return "unsatisfied"
	}
}

// EvaluateDirection checks one required direction d for c played at pos.
//
// The neighbour in direction d supports the play when it holds an allied
// monster able to step back toward pos (range 1, 2 or any in Flip(d)), or,
// failing that, an allied land whose own needs include Flip(d). Support is
// free only when both roles are set and equal.
func EvaluateDirection(c card.Card, d grid.Direction, pos grid.Pos, seat grid.Seat, b board.Board) NeedResult {
	v, ok := grid.VectorFor(seat, d)
	if !ok {
		return NeedUnsatisfied
	}
	target := pos.Add(v)
	if !b.InBounds(target) {
		return NeedUnsatisfied
	}
	back := grid.Flip(d)
	role := c.Base().Role

	if m, ok := b.Units.At(target).(*card.Monster); ok && m.Owner == seat {
		if m.Movement.CanStep(back) {
			return roleResult(role, m.Role)
		}
	}
	if l, ok := b.Lands.At(target).(*card.Land); ok && l.Owner == seat {
		if l.HasNeed(back) {
			return roleResult(role, l.Role)
		}
	}
	return NeedUnsatisfied
}

// EvaluateNeeds aggregates every required direction of c at pos: unsatisfied
// if any direction is, free if all are free, paid otherwise. A card without
// needs is free everywhere.
func EvaluateNeeds(c card.Supported, pos grid.Pos, seat grid.Seat, b board.Board) NeedResult {
	needs := c.RequiredDirections()
	if len(needs) == 0 {
		return NeedFree
	}
	result := NeedFree
	for _, d := range needs {
		r := EvaluateDirection(c, d, pos, seat, b)
		if r == NeedUnsatisfied {
			return NeedUnsatisfied
		}
		if r < result {
			result = r
		}
	}
	return result
}

func roleResult(cardRole, supporterRole string) NeedResult {
	if cardRole != "" && supporterRole != "" && cardRole == supporterRole {
		return NeedFree
	}
	return NeedPaid
}
