// Package grid holds the board coordinate model shared by every component
// that reasons about adjacency: seats, positions and seat-relative directions.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownDirection is returned when a direction string is not one of the eight known ones.
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrBadCellKey is returned when a cell key is not of the form "x-y".
	ErrBadCellKey = errors.New("bad cell key")
)

// Seat is a player's fixed identity within a match.
type Seat string

const (
	SeatOne Seat = "1"
	SeatTwo Seat = "2"
)

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	if s == SeatOne {
		return SeatTwo
	}
	return SeatOne
}

// Valid reports whether s is one of the two seats.
func (s Seat) Valid() bool {
	return s == SeatOne || s == SeatTwo
}

// Pos is a board cell. X is the row, Y the column.
type Pos struct {
	X int
	Y int
}

// Add returns p moved by v.
func (p Pos) Add(v Vector) Pos {
	return Pos{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Key returns the "x-y" cell key used by highlight maps.
func (p Pos) Key() string {
	return strconv.Itoa(p.X) + "-" + strconv.Itoa(p.Y)
}

func (p Pos) String() string {
	return p.Key()
}

// MarshalJSON encodes the position as the wire pair [x, y].
func (p Pos) MarshalJSON() ([]byte, error) {
	return []byte("[" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + "]"), nil
}

// UnmarshalJSON decodes the wire pair [x, y].
func (p *Pos) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return fmt.Errorf("position must be a [x, y] pair, got %s", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return fmt.Errorf("position must have two coordinates, got %s", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("position x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("position y: %w", err)
	}
	p.X, p.Y = x, y
	return nil
}

// ParseKey parses an "x-y" cell key.
func ParseKey(key string) (Pos, error) {
	xs, ys, ok := strings.Cut(key, "-")
	if !ok {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellKey, key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellKey, key)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellKey, key)
	}
	return Pos{X: x, Y: y}, nil
}
