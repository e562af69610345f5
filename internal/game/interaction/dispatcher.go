package interaction

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game/targeting"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

// Sender delivers an outbound frame to the server.
type Sender interface {
	Send(ctx context.Context, msg protocol.Outbound) error
}

// Dispatcher sends answers to pending steps, at most once per step.
//
// The key of the last answered step is remembered; a later submission for a
// step with the same key is refused with ErrDuplicateStep. Every sent step
// answer carries a strictly increasing nonce.
type Dispatcher struct {
	mu       sync.Mutex
	machine  *Machine
	sender   Sender
	answered StepKey
	seq      uint64
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher answering the steps tracked by machine.
func NewDispatcher(machine *Machine, sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{machine: machine, sender: sender, logger: logger}
}

// Submit answers the current step. It returns the nonce of the sent frame,
// or zero when the answer was sent as an end-turn discard.
func (d *Dispatcher) Submit(ctx context.Context, answer targeting.Answer) (uint64, error) {
	a, ok := d.machine.Current()
	if !ok {
		return 0, ErrNotAwaiting
	}
	seat := d.machine.Seat()
	if seat == "" || a.Owner != seat {
		return 0, ErrNotOwner
	}
	if err := checkShape(a, answer); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := KeyFor(a)
	if key == d.answered {
		d.logger.Debug("suppressed duplicate step answer",
			zap.String("kind", string(a.Kind)),
			zap.String("card_id", a.CardID),
		)
		return 0, ErrDuplicateStep
	}

	var (
		msg   protocol.Outbound
		nonce uint64
	)
	if a.Source == SourceEndTurnDiscard {
		msg = protocol.EndTurnWithDiscard(seat, *answer.HandIndex)
	} else {
		nonce = d.seq + 1
		msg = protocol.SorceryStep(seat, answer, nonce)
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return 0, fmt.Errorf("send step answer: %w", err)
	}
	if nonce > 0 {
		d.seq = nonce
	}
	d.answered = key
	d.logger.Info("step answered",
		zap.String("kind", string(a.Kind)),
		zap.String("type", msg.Type),
		zap.Uint64("nonce", nonce),
	)
	return nonce, nil
}

// Rearm forgets the last answered step, so the same step can be answered
// again. Called when the machine returns to Idle or the server rejects the
// answer.
func (d *Dispatcher) Rearm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.answered != "" {
		d.logger.Debug("step dispatcher re-armed")
	}
	d.answered = ""
}

// Answered reports whether the current step was already answered.
func (d *Dispatcher) Answered() bool {
	a, ok := d.machine.Current()
	if !ok {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.answered != "" && d.answered == KeyFor(a)
}

// Seq returns the nonce of the last sent step answer.
func (d *Dispatcher) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

func checkShape(a Awaiting, answer targeting.Answer) error {
	switch {
	case a.Kind.IsCell():
		if answer.Pos == nil {
			return fmt.Errorf("%w: %s needs a position", targeting.ErrWrongKind, a.Kind)
		}
	case a.Kind.IsCard():
		if answer.CardID == "" {
			return fmt.Errorf("%w: %s needs a card id", targeting.ErrWrongKind, a.Kind)
		}
	case a.Kind == targeting.TargetTypeHandSlot:
		if answer.HandIndex == nil {
			return fmt.Errorf("%w: %s needs a hand index", targeting.ErrWrongKind, a.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", targeting.ErrWrongKind, a.Kind)
	}
	return nil
}
