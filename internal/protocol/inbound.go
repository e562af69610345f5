// Package protocol defines the JSON frames exchanged with the match server.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// Inbound message types. Snapshots without a type are plain state updates.
const (
	TypeInit                 = "init"
	TypeAwaitingStep         = "awaiting-step"
	TypeAwaitingInput        = "awaiting-input"
	TypeAwaitingDeckTutoring = "awaiting-deck-tutoring"
	TypeDiscardToEndTurn     = "discard-to-end-turn"
	TypeOpponentWaiting      = "opponent-waiting"
	TypeResolutionComplete   = "resolution-complete"
	TypeGameOver             = "game-over"
)

// Game over results.
const (
	ResultVictory = "victory"
	ResultDefeat  = "defeat"
)

// Message is one inbound frame. Every field is optional; nil or empty means
// the field was absent and the mirrored value must be left alone.
type Message struct {
	Type string `json:"type,omitempty"`

	UserAssignments map[string]grid.Seat `json:"user_assignments,omitempty"`

	Board     *board.Grid             `json:"board,omitempty"`
	LandBoard *board.Grid             `json:"land_board,omitempty"`
	Hand1     *card.List              `json:"hand1,omitempty"`
	Hand2     *card.List              `json:"hand2,omitempty"`
	Mana      map[grid.Seat]int       `json:"mana,omitempty"`
	Graveyard map[grid.Seat]card.List `json:"graveyard,omitempty"`
	LandDecks map[grid.Seat]card.List `json:"land_decks,omitempty"`
	DeckSizes map[grid.Seat]int       `json:"deck_sizes,omitempty"`
	Turn      grid.Seat               `json:"turn,omitempty"`
	MovesLeft *int                    `json:"moves_left,omitempty"`

	// Actions is the per-seat one-per-turn action flags, kept opaque.
	Actions map[string]json.RawMessage `json:"actions_this_turn,omitempty"`

	CenterTileControl json.RawMessage `json:"center_tile_control,omitempty"`

	// Interaction is kept raw so that an explicit null (step finished) can be
	// told apart from an absent field.
	Interaction json.RawMessage `json:"interaction,omitempty"`

	From    *grid.Pos `json:"from,omitempty"`
	To      *grid.Pos `json:"to,omitempty"`
	Pos     *grid.Pos `json:"pos,omitempty"`
	Slot    *int      `json:"slot,omitempty"`
	CardID  string    `json:"card_id,omitempty"`
	Success *bool     `json:"success,omitempty"`
	Info    string    `json:"info,omitempty"`

	ValidTargets         json.RawMessage `json:"valid_targets,omitempty"`
	ValidTutoringTargets json.RawMessage `json:"valid_tutoring_targets,omitempty"`

	GameOver *GameOver `json:"game_over,omitempty"`
}

// GameOver is the terminal result as seen by the receiving seat.
type GameOver struct {
	Result string    `json:"result"`
	Winner grid.Seat `json:"winner,omitempty"`
}

// Interaction is the server's description of a pending script step.
type Interaction struct {
	Owner    grid.Seat     `json:"owner"`
	CardID   string        `json:"card_id,omitempty"`
	Awaiting *AwaitingStep `json:"awaiting"`
}

// AwaitingStep is the choice the owner must make.
type AwaitingStep struct {
	Kind        string          `json:"kind"`
	Suggestions json.RawMessage `json:"suggestions,omitempty"`
	Filters     json.RawMessage `json:"filters,omitempty"`
}

// CompactFilters returns the filters with insignificant whitespace removed,
// or "" when there are none.
func (a *AwaitingStep) CompactFilters() string {
	if len(a.Filters) == 0 || isNull(a.Filters) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, a.Filters); err != nil {
		return string(a.Filters)
	}
	return buf.String()
}

// Decode parses one inbound frame.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}

// UnknownCards returns every card in the frame that could not be
// interpreted. Such cards keep their slot but are never playable.
func (m *Message) UnknownCards() []*card.Unknown {
	var out []*card.Unknown
	for _, g := range []*board.Grid{m.Board, m.LandBoard} {
		if g != nil {
			out = append(out, g.Unknowns()...)
		}
	}
	for _, l := range []*card.List{m.Hand1, m.Hand2} {
		if l != nil {
			out = append(out, l.Unknowns()...)
		}
	}
	for _, lists := range []map[grid.Seat]card.List{m.Graveyard, m.LandDecks} {
		for _, l := range lists {
			out = append(out, l.Unknowns()...)
		}
	}
	return out
}

// HasInteraction reports whether the interaction field was present, null
// included.
func (m *Message) HasInteraction() bool {
	return len(m.Interaction) > 0
}

// DecodeInteraction returns the pending step carried by the message. A null
// interaction, or one without an awaiting choice, yields nil.
func (m *Message) DecodeInteraction() (*Interaction, error) {
	if !m.HasInteraction() || isNull(m.Interaction) {
		return nil, nil
	}
	var in Interaction
	if err := json.Unmarshal(m.Interaction, &in); err != nil {
		return nil, fmt.Errorf("decode interaction: %w", err)
	}
	if in.Awaiting == nil || in.Awaiting.Kind == "" {
		return nil, nil
	}
	return &in, nil
}

// Succeeded reports whether the frame explicitly reports success.
func (m *Message) Succeeded() bool {
	return m.Success != nil && *m.Success
}

// Failed reports whether the frame explicitly reports failure.
func (m *Message) Failed() bool {
	return m.Success != nil && !*m.Success
}

// IsMoveResult reports whether the frame is the successful result of a move,
// which triggers the optimistic relocation.
func (m *Message) IsMoveResult() bool {
	return m.Board != nil && m.From != nil && m.To != nil && m.Succeeded()
}

// CenterControl returns the center tile controller as text, if present.
func (m *Message) CenterControl() (string, bool) {
	if len(m.CenterTileControl) == 0 || isNull(m.CenterTileControl) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(m.CenterTileControl, &s); err == nil {
		return s, true
	}
	return string(bytes.TrimSpace(m.CenterTileControl)), true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
