// Package card models the three card variants received from the server.
//
// Cards are immutable once decoded: a new snapshot replaces them wholesale.
// Only monsters carry movement; only sorceries and lands carry needs.
package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// ErrUnknownCardType marks a wire card whose type tag is not recognised.
var ErrUnknownCardType = errors.New("unknown card type")

// Kind is the variant tag of a card.
type Kind string

const (
	KindMonster Kind = "monster"
	KindSorcery Kind = "sorcery"
	KindLand    Kind = "land"

	// KindUnknown is reported by cards the client could not interpret.
	KindUnknown Kind = "unknown"
)

// Info holds the fields every card variant shares.
type Info struct {
	ID    string
	Name  string
	Owner grid.Seat
	Mana  int
	Role  string
}

// Base returns the shared card fields.
func (i Info) Base() Info { return i }

// Card is one of *Monster, *Sorcery or *Land.
type Card interface {
	Base() Info
	Kind() Kind
}

// Supported is implemented by the variants that declare needs.
type Supported interface {
	Card
	RequiredDirections() []grid.Direction
}

// Monster is a unit that moves on the unit grid.
type Monster struct {
	Info
	Movement Movement
}

func (*Monster) Kind() Kind { return KindMonster }

// Sorcery is activated on a cell whose activation needs are met.
type Sorcery struct {
	Info
	Needs []grid.Direction
}

func (*Sorcery) Kind() Kind { return KindSorcery }

// RequiredDirections returns the activation needs in declaration order.
func (s *Sorcery) RequiredDirections() []grid.Direction { return s.Needs }

// Land is terrain placed on the land grid when its creation needs are met.
type Land struct {
	Info
	Needs []grid.Direction
}

func (*Land) Kind() Kind { return KindLand }

// RequiredDirections returns the creation needs in declaration order.
func (l *Land) RequiredDirections() []grid.Direction { return l.Needs }

// HasNeed reports whether the land declares d among its creation needs.
func (l *Land) HasNeed(d grid.Direction) bool {
	for _, n := range l.Needs {
		if n == d {
			return true
		}
	}
	return false
}

// Unknown stands in for a wire card the client could not interpret. It keeps
// the card's slot so hand and deck indices stay aligned with the server, and
// it is never playable.
type Unknown struct {
	Info
	// Type is the wire type tag as received, possibly empty.
	Type string
	Err  error
}

func (*Unknown) Kind() Kind { return KindUnknown }

// DisplayName turns a card id such as "fire_bolt" into "Fire Bolt".
func DisplayName(cardID string) string {
	words := strings.Split(cardID, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type wireCard struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Owner           wireSeat         `json:"owner"`
	Type            Kind             `json:"type"`
	Mana            *int             `json:"mana"`
	Role            string           `json:"role"`
	Movement        Movement         `json:"movement"`
	ActivationNeeds []grid.Direction `json:"activation_needs"`
	CreationNeeds   []grid.Direction `json:"creation_needs"`
}

// wireSeat accepts the owner as either "1" or 1.
type wireSeat grid.Seat

func (s *wireSeat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = wireSeat(str)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	*s = wireSeat(strconv.Itoa(n))
	return nil
}

// Decode parses one wire card. A JSON null yields a nil Card. A well-formed
// card with an unrecognised type yields an *Unknown whose Err wraps
// ErrUnknownCardType; only malformed JSON is an error.
func Decode(data []byte) (Card, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	info := Info{
		ID:    w.ID,
		Name:  w.Name,
		Owner: grid.Seat(w.Owner),
		Role:  w.Role,
	}
	if w.Mana != nil {
		info.Mana = *w.Mana
	}
	switch w.Type {
	case KindMonster:
		return &Monster{Info: info, Movement: w.Movement}, nil
	case KindSorcery:
		return &Sorcery{Info: info, Needs: w.ActivationNeeds}, nil
	case KindLand:
		return &Land{Info: info, Needs: w.CreationNeeds}, nil
	default:
		return &Unknown{
			Info: info,
			Type: string(w.Type),
			Err:  fmt.Errorf("%w: %q (card %s)", ErrUnknownCardType, w.Type, w.ID),
		}, nil
	}
}

// DecodeLenient is Decode with malformed cards turned into an *Unknown, so
// one bad card never fails the collection holding it.
func DecodeLenient(data []byte) Card {
	c, err := Decode(data)
	if err != nil {
		return &Unknown{Err: err}
	}
	return c
}

// List is an ordered collection of cards such as a hand, graveyard or deck.
type List []Card

// UnmarshalJSON decodes a JSON array of wire cards. Only a non-array is an
// error; individual cards decode leniently.
func (l *List) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode card list: %w", err)
	}
	out := make(List, 0, len(raw))
	for _, r := range raw {
		out = append(out, DecodeLenient(r))
	}
	*l = out
	return nil
}

// Unknowns returns the cards of l that could not be interpreted.
func (l List) Unknowns() []*Unknown {
	var out []*Unknown
	for _, c := range l {
		if u, ok := c.(*Unknown); ok {
			out = append(out, u)
		}
	}
	return out
}

// Find returns the card with the given id.
func (l List) Find(id string) (Card, int, bool) {
	for i, c := range l {
		if c != nil && c.Base().ID == id {
			return c, i, true
		}
	}
	return nil, -1, false
}
