package game

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
	"github.com/runeboard/runeboard-client/internal/game/targeting"
)

// State mirrors the server's view of one match as seen by the local seat.
// Readers may call any exported method concurrently; writes happen only
// through the Reconciler.
type State struct {
	mu sync.RWMutex

	username string
	seat     grid.Seat
	turn     grid.Seat

	board      board.Board
	hands      map[grid.Seat]card.List
	graveyards map[grid.Seat]card.List
	landDecks  map[grid.Seat]card.List
	deckSizes  map[grid.Seat]int
	actions    map[string]json.RawMessage

	movesLeft     int
	movesKnown    bool
	centerControl string

	pool     *mana.Pool
	result   string
	gameOver bool
}

// NewState creates an empty mirror for username.
func NewState(username string) *State {
	return &State{
		username:   username,
		hands:      make(map[grid.Seat]card.List, 2),
		graveyards: make(map[grid.Seat]card.List, 2),
		landDecks:  make(map[grid.Seat]card.List, 2),
		deckSizes:  make(map[grid.Seat]int, 2),
		pool:       mana.NewPool(nil),
	}
}

// Username is the name sent in the hello frame.
func (s *State) Username() string {
	return s.username
}

// Seat is the local seat, empty until the init frame arrives.
func (s *State) Seat() grid.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seat
}

// Turn is the seat whose turn it is.
func (s *State) Turn() grid.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn
}

// MyTurn reports whether the local seat is to act.
func (s *State) MyTurn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seat != "" && s.turn == s.seat
}

// Board returns a copy of both grids.
func (s *State) Board() board.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Clone()
}

// InBounds reports whether p lies on the mirrored board.
func (s *State) InBounds(p grid.Pos) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.InBounds(p)
}

// Mana returns the mirrored pool.
func (s *State) Mana() *mana.Pool {
	return s.pool
}

// Hand returns the hand of seat.
func (s *State) Hand(seat grid.Seat) card.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(card.List(nil), s.hands[seat]...)
}

// MyHand returns the local hand.
func (s *State) MyHand() card.List {
	return s.Hand(s.Seat())
}

// HandSize is the size of the local hand.
func (s *State) HandSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hands[s.seat])
}

// Graveyard returns the graveyard of seat.
func (s *State) Graveyard(seat grid.Seat) card.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(card.List(nil), s.graveyards[seat]...)
}

// GraveyardChoices lists the local graveyard as pickable cards.
func (s *State) GraveyardChoices() []targeting.CardChoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gy := s.graveyards[s.seat]
	out := make([]targeting.CardChoice, 0, len(gy))
	for _, c := range gy {
		if c == nil {
			continue
		}
		info := c.Base()
		out = append(out, targeting.CardChoice{ID: info.ID, Name: info.Name, Type: string(c.Kind()), Mana: info.Mana})
	}
	return out
}

// LandDeck returns the land deck of seat.
func (s *State) LandDeck(seat grid.Seat) card.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(card.List(nil), s.landDecks[seat]...)
}

// MyLandDeck returns the local land deck.
func (s *State) MyLandDeck() card.List {
	return s.LandDeck(s.Seat())
}

// DeckSize returns the remaining deck size of seat.
func (s *State) DeckSize(seat grid.Seat) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deckSizes[seat]
}

// MovesLeft returns the remaining moves, if the server has reported them.
func (s *State) MovesLeft() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movesLeft, s.movesKnown
}

// CenterControl returns who holds the center tile.
func (s *State) CenterControl() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.centerControl
}

// ActionsThisTurn returns the raw per-turn action flags.
func (s *State) ActionsThisTurn() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(s.actions))
	for k, v := range s.actions {
		out[k] = v
	}
	return out
}

// GameOver reports whether a final result has arrived.
func (s *State) GameOver() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameOver
}

// Result is the final result for the local seat, "victory" or "defeat".
func (s *State) Result() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *State) seats() []grid.Seat {
	set := map[grid.Seat]struct{}{}
	for k := range s.hands {
		set[k] = struct{}{}
	}
	for k := range s.graveyards {
		set[k] = struct{}{}
	}
	for k := range s.landDecks {
		set[k] = struct{}{}
	}
	for k := range s.deckSizes {
		set[k] = struct{}{}
	}
	out := make([]grid.Seat, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
