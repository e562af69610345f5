package grid

import (
	"fmt"
)

// Direction is a symbolic, seat-relative direction on the board.
type Direction string

const (
	Forward      Direction = "forward"
	Back         Direction = "back"
	Left         Direction = "left"
	Right        Direction = "right"
	ForwardLeft  Direction = "forward-left"
	ForwardRight Direction = "forward-right"
	BackLeft     Direction = "back-left"
	BackRight    Direction = "back-right"
)

// AllDirections lists the eight directions in a stable order.
var AllDirections = []Direction{
	Forward, Back, Left, Right,
	ForwardLeft, ForwardRight, BackLeft, BackRight,
}

// Vector is a unit step on the grid. DX moves along rows, DY along columns.
type Vector struct {
	DX int
	DY int
}

// Scale returns the vector multiplied by n.
func (v Vector) Scale(n int) Vector {
	return Vector{DX: v.DX * n, DY: v.DY * n}
}

// vectors for seat one; seat two sees the board rotated 180 degrees.
var seatOneVectors = map[Direction]Vector{
	Forward:      {-1, 0},
	Back:         {1, 0},
	Left:         {0, -1},
	Right:        {0, 1},
	ForwardLeft:  {-1, -1},
	ForwardRight: {-1, 1},
	BackLeft:     {1, -1},
	BackRight:    {1, 1},
}

var flips = map[Direction]Direction{
	Forward:      Back,
	Back:         Forward,
	Left:         Right,
	Right:        Left,
	ForwardLeft:  BackRight,
	ForwardRight: BackLeft,
	BackLeft:     ForwardRight,
	BackRight:    ForwardLeft,
}

// Valid reports whether d is one of the eight known directions.
func (d Direction) Valid() bool {
	_, ok := flips[d]
	return ok
}

// ParseDirection converts a wire string into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
	return d, nil
}

// Flip returns the opposite direction. Flip(Flip(d)) == d for every valid d.
// Unknown directions are returned unchanged.
func Flip(d Direction) Direction {
	if f, ok := flips[d]; ok {
		return f
	}
	return d
}

// VectorFor returns the grid vector of d as seen from seat. Forward always
// points toward the opponent's side.
func VectorFor(seat Seat, d Direction) (Vector, bool) {
	v, ok := seatOneVectors[d]
	if !ok {
		return Vector{}, false
	}
	if seat != SeatOne {
		v = Vector{DX: -v.DX, DY: -v.DY}
	}
	return v, true
}

// Vectors returns the full direction table for seat.
func Vectors(seat Seat) map[Direction]Vector {
	out := make(map[Direction]Vector, len(seatOneVectors))
	for _, d := range AllDirections {
		v, _ := VectorFor(seat, d)
		out[d] = v
	}
	return out
}
