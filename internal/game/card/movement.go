package card

import (
	"encoding/json"
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// Range is how far a monster may travel in one direction.
type Range int

// RangeAny means the ray continues to the board edge or the first occupant.
const RangeAny Range = -1

// CanStep reports whether the range lets the unit reach an adjacent cell.
// Only 1, 2 and "any" count; the server treats other values as immobile.
func (r Range) CanStep() bool {
	return r == 1 || r == 2 || r == RangeAny
}

// Steps returns how many cells the ray may cover, using bound for RangeAny.
func (r Range) Steps(bound int) int {
	if r == RangeAny {
		return bound
	}
	if r < 0 {
		return 0
	}
	return int(r)
}

func (r Range) String() string {
	if r == RangeAny {
		return "any"
	}
	return fmt.Sprintf("%d", int(r))
}

// MarshalJSON writes "any" or the number.
func (r Range) MarshalJSON() ([]byte, error) {
	if r == RangeAny {
		return []byte(`"any"`), nil
	}
	return []byte(fmt.Sprintf("%d", int(r))), nil
}

// UnmarshalJSON accepts a number or the string "any".
func (r *Range) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "any" {
			*r = RangeAny
			return nil
		}
		return fmt.Errorf("unknown range %q", s)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	*r = Range(n)
	return nil
}

// Movement maps a direction to the range a monster covers in it.
type Movement map[grid.Direction]Range

// UnmarshalJSON decodes a direction to range object. An entry whose range
// cannot be read is dropped, leaving the monster immobile in that direction.
func (m *Movement) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = nil
		return nil
	}
	var raw map[grid.Direction]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("movement: %w", err)
	}
	out := make(Movement, len(raw))
	for d, v := range raw {
		var r Range
		if err := json.Unmarshal(v, &r); err != nil {
			continue
		}
		out[d] = r
	}
	*m = out
	return nil
}

// Range returns the range for d, zero when absent.
func (m Movement) Range(d grid.Direction) Range {
	return m[d]
}

// CanStep reports whether the monster could step one cell toward d.
func (m Movement) CanStep(d grid.Direction) bool {
	return m[d].CanStep()
}
