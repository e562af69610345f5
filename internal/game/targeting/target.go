package targeting

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// TargetType is the kind of choice a pending step asks for. The values are
// the server's awaiting kinds.
type TargetType string

const (
	// TargetTypeBoardCell asks for a cell on the unit grid
	TargetTypeBoardCell TargetType = "select_board_target"
	// TargetTypeLandCell asks for a cell on the land grid
	TargetTypeLandCell TargetType = "select_land_target"
	// TargetTypeDeckCard asks for a card from the actor's deck
	TargetTypeDeckCard TargetType = "select_deck_card"
	// TargetTypeGraveyardCard asks for a card from the actor's graveyard
	TargetTypeGraveyardCard TargetType = "select_graveyard_card"
	// TargetTypeHandSlot asks for a hand slot to discard
	TargetTypeHandSlot TargetType = "discard_from_hand"
)

// Known reports whether t is one of the recognised kinds.
func (t TargetType) Known() bool {
	switch t {
	case TargetTypeBoardCell, TargetTypeLandCell, TargetTypeDeckCard,
		TargetTypeGraveyardCard, TargetTypeHandSlot:
		return true
	}
	return false
}

// IsCell reports whether t is answered with a board position.
func (t TargetType) IsCell() bool {
	return t == TargetTypeBoardCell || t == TargetTypeLandCell
}

// IsCard reports whether t is answered with a card id.
func (t TargetType) IsCard() bool {
	return t == TargetTypeDeckCard || t == TargetTypeGraveyardCard
}

// CardChoice is a card offered in a pick list.
type CardChoice struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Mana int    `json:"mana,omitempty"`
}

// Suggestions is the parsed suggestion list of a pending step. Entries that
// are neither a two-integer position nor a card object are dropped.
type Suggestions struct {
	Positions []grid.Pos
	Cards     []CardChoice
}

// Empty reports whether no usable suggestion was parsed.
func (s Suggestions) Empty() bool {
	return len(s.Positions) == 0 && len(s.Cards) == 0
}

// HasPosition reports whether p is among the suggested positions.
func (s Suggestions) HasPosition(p grid.Pos) bool {
	for _, sp := range s.Positions {
		if sp == p {
			return true
		}
	}
	return false
}

// HasCard reports whether id is among the suggested cards.
func (s Suggestions) HasCard(id string) bool {
	for _, c := range s.Cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Canonical returns a stable textual form of the suggestions, suitable for
// building deduplication keys.
func (s Suggestions) Canonical() string {
	var buf bytes.Buffer
	for i, p := range s.Positions {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteString(p.Key())
	}
	if len(s.Positions) > 0 && len(s.Cards) > 0 {
		buf.WriteByte('|')
	}
	for i, c := range s.Cards {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteString(c.ID)
	}
	return buf.String()
}

// ParseSuggestions decodes a raw suggestion array. Anything that is not a
// JSON array yields no suggestions.
func ParseSuggestions(raw json.RawMessage) Suggestions {
	var out Suggestions
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if p, ok := parsePair(item); ok {
			out.Positions = append(out.Positions, p)
			continue
		}
		if c, ok := parseChoice(item); ok {
			out.Cards = append(out.Cards, c)
		}
	}
	return out
}

// ParsePositions decodes a plain list of [x, y] pairs, dropping anything
// else.
func ParsePositions(raw json.RawMessage) []grid.Pos {
	return ParseSuggestions(raw).Positions
}

func parsePair(item json.RawMessage) (grid.Pos, bool) {
	var pair []any
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	if err := dec.Decode(&pair); err != nil || len(pair) != 2 {
		return grid.Pos{}, false
	}
	x, ok := integer(pair[0])
	if !ok {
		return grid.Pos{}, false
	}
	y, ok := integer(pair[1])
	if !ok {
		return grid.Pos{}, false
	}
	return grid.Pos{X: x, Y: y}, true
}

func integer(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n.String())
	return i, err == nil
}

func parseChoice(item json.RawMessage) (CardChoice, bool) {
	var c CardChoice
	if err := json.Unmarshal(item, &c); err != nil || c.ID == "" {
		return CardChoice{}, false
	}
	return c, true
}

// Answer is the payload of a step reply. Exactly one field is set.
type Answer struct {
	Pos       *grid.Pos `json:"pos,omitempty"`
	CardID    string    `json:"card_id,omitempty"`
	HandIndex *int      `json:"hand_index,omitempty"`
}

// PosAnswer answers a cell pick.
func PosAnswer(p grid.Pos) Answer { return Answer{Pos: &p} }

// CardAnswer answers a deck or graveyard pick.
func CardAnswer(id string) Answer { return Answer{CardID: id} }

// HandAnswer answers a discard pick.
func HandAnswer(index int) Answer { return Answer{HandIndex: &index} }
