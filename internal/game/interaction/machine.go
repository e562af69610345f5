package interaction

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/targeting"
)

var (
	// ErrLocked is returned for input suppressed while a step is pending.
	ErrLocked = errors.New("input locked while a step is resolving")
	// ErrNotOwner is returned when the local seat answers a step it does not own.
	ErrNotOwner = errors.New("pending step belongs to the opponent")
	// ErrNotAwaiting is returned when a step answer is given with no step pending.
	ErrNotAwaiting = errors.New("no step is pending")
	// ErrDuplicateStep is returned when the pending step was already answered.
	ErrDuplicateStep = errors.New("step already answered")
)

// State is the coarse state of the machine.
type State int

const (
	// StateIdle is normal play.
	StateIdle State = iota
	// StateAwaiting means the server is waiting on one seat to answer a step.
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Source records how a pending step was announced, which decides the shape
// of its answer.
type Source int

const (
	// SourceScript is a script-engine step, answered with a sorcery-step.
	SourceScript Source = iota
	// SourceEndTurnDiscard is the hand-limit discard, answered with end-turn-with-discard.
	SourceEndTurnDiscard
)

// Awaiting describes the pending step.
type Awaiting struct {
	Kind        targeting.TargetType
	Owner       grid.Seat
	CardID      string
	Suggestions targeting.Suggestions
	// Filters is the step's compacted filter object, "" when absent. It is
	// opaque to the client and only distinguishes otherwise equal steps.
	Filters string
	Source  Source
	// Event is set when the step was announced by a discrete event rather
	// than an interaction snapshot.
	Event bool
}

// Requirement converts the step into a target requirement.
func (a Awaiting) Requirement() targeting.TargetRequirement {
	return targeting.TargetRequirement{
		Type:        a.Kind,
		Suggestions: a.Suggestions,
		Description: string(a.Kind),
	}
}

// Input is a class of user gesture gated by the machine.
type Input int

const (
	InputBoardCell Input = iota
	InputHandCard
	InputLandDeckCard
	InputDeckPick
	InputGraveyardPick
	InputEndTurn
)

var inputNames = map[Input]string{
	InputBoardCell:     "board_cell",
	InputHandCard:      "hand_card",
	InputLandDeckCard:  "land_deck_card",
	InputDeckPick:      "deck_pick",
	InputGraveyardPick: "graveyard_pick",
	InputEndTurn:       "end_turn",
}

func (i Input) String() string {
	if n, ok := inputNames[i]; ok {
		return n
	}
	return fmt.Sprintf("input(%d)", int(i))
}

// answerInput is the only gesture enabled for the owner of each kind.
var answerInput = map[targeting.TargetType]Input{
	targeting.TargetTypeBoardCell:     InputBoardCell,
	targeting.TargetTypeLandCell:      InputBoardCell,
	targeting.TargetTypeDeckCard:      InputDeckPick,
	targeting.TargetTypeGraveyardCard: InputGraveyardPick,
	targeting.TargetTypeHandSlot:      InputHandCard,
}

// Machine tracks whether the server is waiting on a step and gates local
// input accordingly. The zero seat means the local seat is not yet known.
type Machine struct {
	mu      sync.RWMutex
	seat    grid.Seat
	current *Awaiting
	logger  *zap.Logger
}

// NewMachine creates a machine in the Idle state.
func NewMachine(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// SetSeat records the local seat.
func (m *Machine) SetSeat(seat grid.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seat = seat
}

// Seat returns the local seat.
func (m *Machine) Seat() grid.Seat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seat
}

// Enter moves the machine to Awaiting(a). It reports whether the pending
// step changed, so a re-broadcast of the same step returns false.
func (m *Machine) Enter(a Awaiting) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := m.current == nil || KeyFor(*m.current) != KeyFor(a)
	next := a
	m.current = &next
	if changed {
		m.logger.Debug("interaction awaiting",
			zap.String("kind", string(a.Kind)),
			zap.String("owner", string(a.Owner)),
			zap.String("card_id", a.CardID),
			zap.Bool("actor", a.Owner == m.seat),
		)
	}
	return changed
}

// Reset returns the machine to Idle and reports whether it was awaiting.
func (m *Machine) Reset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.current != nil
	m.current = nil
	if was {
		m.logger.Debug("interaction idle")
	}
	return was
}

// State returns Idle or Awaiting.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return StateIdle
	}
	return StateAwaiting
}

// Current returns the pending step, if any.
func (m *Machine) Current() (Awaiting, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Awaiting{}, false
	}
	return *m.current, true
}

// Locked reports whether general play is suspended.
func (m *Machine) Locked() bool {
	return m.State() == StateAwaiting
}

// IsActor reports whether a step is pending and the local seat owns it.
func (m *Machine) IsActor() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.seat != "" && m.current.Owner == m.seat
}

// Allow decides whether a gesture of class in may proceed.
//
// In Idle every general gesture is allowed and pick gestures have nothing
// to answer. While awaiting, the opponent's step locks everything, and the
// local step enables only the gesture that answers its kind.
func (m *Machine) Allow(in Input) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		if in == InputDeckPick || in == InputGraveyardPick {
			return ErrNotAwaiting
		}
		return nil
	}
	if m.seat == "" || m.current.Owner != m.seat {
		return ErrLocked
	}
	if want, ok := answerInput[m.current.Kind]; ok && want == in {
		return nil
	}
	return fmt.Errorf("%w: %s while awaiting %s", ErrLocked, in, m.current.Kind)
}

// Answers reports whether in is the gesture that answers the pending step.
func (m *Machine) Answers(in Input) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Owner != m.seat {
		return false
	}
	want, ok := answerInput[m.current.Kind]
	return ok && want == in
}
