package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/interaction"
	"github.com/runeboard/runeboard-client/internal/game/targeting"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

// Reconciler applies inbound frames to the mirrored state. It is the only
// writer of State and is driven from a single event loop; it is not safe for
// concurrent use.
//
// A successful move result is applied in two phases: the moved unit is
// relocated immediately, and the full frame is applied once the settle delay
// has elapsed. Frames arriving in between are queued and applied afterwards,
// in order.
type Reconciler struct {
	store      *Store
	dispatcher *interaction.Dispatcher
	notifier   Notifier
	journal    *Journal
	delay      time.Duration
	logger     *zap.Logger

	settling *inbound
	timer    *time.Timer
	queue    []inbound
}

type inbound struct {
	raw      []byte
	msg      *protocol.Message
	received time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSettleDelay sets the pause between the optimistic and the
// authoritative board after a move.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.delay = d }
}

// WithNotifier sets the receiver of player notices.
func WithNotifier(n Notifier) Option {
	return func(r *Reconciler) { r.notifier = n }
}

// WithDispatcher lets the reconciler re-arm the step dispatcher.
func WithDispatcher(d *interaction.Dispatcher) Option {
	return func(r *Reconciler) { r.dispatcher = d }
}

// WithJournal records every applied frame.
func WithJournal(j *Journal) Option {
	return func(r *Reconciler) { r.journal = j }
}

// NewReconciler creates a reconciler writing into store.
func NewReconciler(store *Store, logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		store:    store,
		notifier: NotifierFunc(func(Notice) {}),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleFrame decodes and applies one inbound frame. A frame that cannot be
// decoded is returned as an error and leaves the state untouched.
func (r *Reconciler) HandleFrame(raw []byte) error {
	msg, err := protocol.Decode(raw)
	if err != nil {
		return err
	}
	for _, u := range msg.UnknownCards() {
		r.logger.Warn("card not understood, kept as unplayable",
			zap.String("card_id", u.ID),
			zap.String("type", u.Type),
			zap.Error(u.Err),
		)
	}
	r.handle(inbound{raw: raw, msg: msg, received: time.Now().UTC()})
	return nil
}

// SettleC fires when a pending move result is due. It is nil when nothing is
// settling, so selecting on it blocks forever.
func (r *Reconciler) SettleC() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C
}

// Settling reports whether a move result is waiting for its settle delay.
func (r *Reconciler) Settling() bool {
	return r.settling != nil
}

// Pending returns the number of frames queued behind a settling move.
func (r *Reconciler) Pending() int {
	return len(r.queue)
}

// Settle applies the pending move result and then the frames queued behind
// it. It is a no-op when nothing is settling.
func (r *Reconciler) Settle() {
	if r.settling == nil {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	in := *r.settling
	r.settling = nil
	r.apply(in)

	queued := r.queue
	r.queue = nil
	for i := range queued {
		if r.settling != nil {
			r.queue = append(r.queue, queued[i:]...)
			return
		}
		r.handle(queued[i])
	}
}

// Flush settles until nothing is pending.
func (r *Reconciler) Flush() {
	for r.settling != nil {
		r.Settle()
	}
}

// Reset applies whatever is pending and returns the interaction to Idle with
// no highlights and a re-armed dispatcher. Used when the connection is lost.
func (r *Reconciler) Reset() {
	r.Flush()
	r.toIdle()
	r.store.ClearSelection()
}

func (r *Reconciler) handle(in inbound) {
	if r.settling != nil {
		r.queue = append(r.queue, in)
		r.logger.Debug("queued frame behind settling move",
			zap.String("type", in.msg.Type),
			zap.Int("queued", len(r.queue)),
		)
		return
	}

	msg := in.msg
	if msg.IsMoveResult() {
		r.relocate(*msg.From, *msg.To)
		if r.delay > 0 {
			r.store.ClearHighlights()
			r.settling = &in
			r.timer = time.NewTimer(r.delay)
			return
		}
	}
	r.apply(in)
}

func (r *Reconciler) relocate(from, to grid.Pos) {
	st := r.store.state
	st.mu.Lock()
	defer st.mu.Unlock()
	moved, ok := st.board.Relocate(from, to)
	if !ok {
		r.logger.Debug("optimistic relocation skipped",
			zap.String("from", from.Key()),
			zap.String("to", to.Key()),
		)
		return
	}
	st.board = moved
}

func (r *Reconciler) apply(in inbound) {
	msg := in.msg
	machine := r.store.machine

	switch msg.Type {
	case protocol.TypeInit:
		r.applyInit(msg)
	case protocol.TypeAwaitingInput:
		r.enterEvent(targeting.TargetTypeBoardCell, msg.ValidTargets, msg.CardID, interaction.SourceScript)
	case protocol.TypeAwaitingDeckTutoring:
		r.enterEvent(targeting.TargetTypeDeckCard, msg.ValidTutoringTargets, msg.CardID, interaction.SourceScript)
	case protocol.TypeDiscardToEndTurn:
		r.enterEvent(targeting.TargetTypeHandSlot, nil, "", interaction.SourceEndTurnDiscard)
	case protocol.TypeResolutionComplete:
		r.toIdle()
	case protocol.TypeOpponentWaiting:
		text := msg.Info
		if text == "" {
			text = "Waiting for opponent..."
		}
		r.notifier.Notify(Notice{Level: LevelInfo, Message: text})
	}

	r.applySnapshot(msg)

	switch {
	case msg.HasInteraction():
		r.applyInteraction(msg)
	case r.eventStepResolved(msg):
		r.toIdle()
	}

	if msg.Failed() {
		if msg.Info != "" {
			r.notifier.Notify(Notice{Level: LevelError, Message: msg.Info})
		}
		if machine.IsActor() && r.dispatcher != nil {
			r.dispatcher.Rearm()
		}
	}

	r.store.ClearHighlights()
	r.record(in)
}

func (r *Reconciler) applyInit(msg *protocol.Message) {
	st := r.store.state
	seat, ok := msg.UserAssignments[st.username]
	if !ok {
		r.logger.Warn("init frame has no seat for this user",
			zap.String("username", st.username),
		)
		return
	}
	st.mu.Lock()
	st.seat = seat
	st.mu.Unlock()
	r.store.machine.SetSeat(seat)
	r.logger.Info("seat assigned",
		zap.String("username", st.username),
		zap.String("seat", string(seat)),
	)
}

func (r *Reconciler) applySnapshot(msg *protocol.Message) {
	st := r.store.state

	st.mu.Lock()
	seat := st.seat
	if msg.Board != nil {
		st.board.Units = *msg.Board
	}
	if msg.LandBoard != nil {
		st.board.Lands = *msg.LandBoard
	}
	if ctl, ok := msg.CenterControl(); ok {
		st.centerControl = ctl
	}
	turnChanged := msg.Turn != "" && msg.Turn != st.turn
	if msg.Turn != "" {
		st.turn = msg.Turn
	}
	if msg.Actions != nil {
		st.actions = msg.Actions
	}
	if msg.Hand1 != nil {
		st.hands[grid.SeatOne] = *msg.Hand1
	}
	if msg.Hand2 != nil {
		st.hands[grid.SeatTwo] = *msg.Hand2
	}
	for s, n := range msg.DeckSizes {
		st.deckSizes[s] = n
	}
	for s, l := range msg.Graveyard {
		if l != nil {
			st.graveyards[s] = l
		}
	}
	for s, l := range msg.LandDecks {
		if l != nil {
			st.landDecks[s] = l
		}
	}
	if msg.MovesLeft != nil {
		st.movesLeft = *msg.MovesLeft
		st.movesKnown = true
	}
	var result string
	if msg.Type == protocol.TypeGameOver || msg.GameOver != nil {
		st.gameOver = true
		if msg.GameOver != nil {
			st.result = msg.GameOver.Result
		}
		result = st.result
	}
	st.mu.Unlock()

	if len(msg.Mana) > 0 {
		deltas := st.pool.Replace(msg.Mana)
		if msg.Type != protocol.TypeInit {
			for _, d := range deltas {
				r.notifier.Notify(manaNotice(d, seat))
			}
		}
	}
	if turnChanged && seat != "" {
		r.notifier.Notify(turnNotice(msg.Turn, seat))
	}
	if msg.Type == protocol.TypeGameOver || msg.GameOver != nil {
		if n, ok := gameOverNotice(result); ok {
			r.notifier.Notify(n)
		}
		r.toIdle()
		r.logger.Info("game over", zap.String("result", result))
	}
}

func (r *Reconciler) applyInteraction(msg *protocol.Message) {
	in, err := msg.DecodeInteraction()
	if err != nil {
		r.logger.Warn("dropping malformed interaction", zap.Error(err))
		return
	}
	if in == nil {
		r.toIdle()
		return
	}
	kind := targeting.TargetType(in.Awaiting.Kind)
	if !kind.Known() {
		r.logger.Warn("unknown awaiting kind, input stays locked",
			zap.String("kind", in.Awaiting.Kind),
		)
	}
	r.enter(interaction.Awaiting{
		Kind:        kind,
		Owner:       in.Owner,
		CardID:      in.CardID,
		Suggestions: targeting.ParseSuggestions(in.Awaiting.Suggestions),
		Filters:     in.Awaiting.CompactFilters(),
		Source:      interaction.SourceScript,
	})
}

// enterEvent handles the discrete awaiting events, which are only ever sent
// to the seat that must answer.
func (r *Reconciler) enterEvent(kind targeting.TargetType, suggestions []byte, cardID string, source interaction.Source) {
	seat := r.store.state.Seat()
	if seat == "" {
		r.logger.Warn("awaiting event before seat assignment", zap.String("kind", string(kind)))
		return
	}
	a := interaction.Awaiting{
		Kind:        kind,
		Owner:       seat,
		CardID:      cardID,
		Suggestions: targeting.ParseSuggestions(suggestions),
		Source:      source,
		Event:       true,
	}
	r.enter(a)
}

func (r *Reconciler) enter(a interaction.Awaiting) {
	machine := r.store.machine
	if !machine.Enter(a) {
		return
	}
	if a.Owner != r.store.state.Seat() {
		return
	}
	switch {
	case a.Source == interaction.SourceEndTurnDiscard:
		r.notifier.Notify(Notice{Level: LevelWarning, Message: "Discard card from hand to end turn"})
	case a.CardID != "":
		r.notifier.Notify(targetPrompt(a.CardID))
	default:
		r.notifier.Notify(Notice{Level: LevelWarning, Message: "Select a target"})
	}
}

// eventStepResolved reports whether msg ends a step that was announced by a
// discrete event. Such steps have no interaction snapshot to clear them, so
// the first state snapshot after the answer does.
func (r *Reconciler) eventStepResolved(msg *protocol.Message) bool {
	a, ok := r.store.machine.Current()
	if !ok || !a.Event || msg.Type != "" || msg.Board == nil {
		return false
	}
	return r.dispatcher == nil || r.dispatcher.Answered()
}

func (r *Reconciler) toIdle() {
	r.store.machine.Reset()
	if r.dispatcher != nil {
		r.dispatcher.Rearm()
	}
}

func (r *Reconciler) record(in inbound) {
	if r.journal == nil {
		return
	}
	sum, err := r.store.state.ComputeChecksum()
	if err != nil {
		r.logger.Warn("checksum failed", zap.Error(err))
	}
	e := r.journal.Record(Entry{
		Received: in.received,
		Type:     in.msg.Type,
		Frame:    in.raw,
		Checksum: sum.Hash,
	})
	r.logger.Debug("frame applied",
		zap.Uint64("seq", e.Seq),
		zap.String("type", frameType(in.msg)),
		zap.String("checksum", shortHash(sum.Hash)),
	)
}

func frameType(msg *protocol.Message) string {
	if msg.Type != "" {
		return msg.Type
	}
	return "snapshot"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// String describes the reconciler's queue for diagnostics.
func (r *Reconciler) String() string {
	return fmt.Sprintf("reconciler(settling=%t, queued=%d)", r.settling != nil, len(r.queue))
}
