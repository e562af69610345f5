package game

import (
	"sync"

	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/interaction"
	"github.com/runeboard/runeboard-client/internal/game/rules"
)

// SelectionKind says what the player has tentatively picked.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectHand
	SelectLandDeck
	SelectUnit
)

// Selection is the local, not yet sent, choice of the player.
type Selection struct {
	Kind SelectionKind
	Slot int
	Pos  grid.Pos
}

// Store is the single container for mirrored state and local UI state.
// Mirrored state changes only through the Reconciler; selection and
// highlights change through the typed actions below.
type Store struct {
	mu         sync.RWMutex
	state      *State
	machine    *interaction.Machine
	selection  Selection
	highlights rules.HighlightMap
}

// NewStore creates a store around state and machine.
func NewStore(state *State, machine *interaction.Machine) *Store {
	return &Store{
		state:      state,
		machine:    machine,
		highlights: rules.HighlightMap{},
	}
}

// State returns the mirrored state.
func (s *Store) State() *State { return s.state }

// Machine returns the interaction state machine.
func (s *Store) Machine() *interaction.Machine { return s.machine }

// Select records a selection and the highlights it offers.
func (s *Store) Select(sel Selection, hl rules.HighlightMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
	if hl == nil {
		hl = rules.HighlightMap{}
	}
	s.highlights = hl
}

// ClearSelection drops the selection and its highlights.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{}
	s.highlights = rules.HighlightMap{}
}

// ClearHighlights drops the highlights but keeps the selection.
func (s *Store) ClearHighlights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = rules.HighlightMap{}
}

// Selection returns the current selection.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Highlights returns a copy of the current highlights.
func (s *Store) Highlights() rules.HighlightMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(rules.HighlightMap, len(s.highlights))
	for k, v := range s.highlights {
		out[k] = v
	}
	return out
}

// TargetCells returns the suggested cells of a pending cell pick owned by the
// local seat.
func (s *Store) TargetCells() []grid.Pos {
	a, ok := s.machine.Current()
	if !ok || !a.Kind.IsCell() || a.Owner != s.state.Seat() {
		return nil
	}
	return a.Suggestions.Positions
}
