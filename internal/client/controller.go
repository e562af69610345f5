package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/interaction"
	"github.com/runeboard/runeboard-client/internal/game/rules"
	"github.com/runeboard/runeboard-client/internal/game/targeting"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

// ErrRejected is returned when a gesture fails a local pre-check. The reason
// has already been sent to the notifier.
var ErrRejected = errors.New("action rejected")

// Confirmer asks the player to confirm an action before it is sent.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AcceptAll confirms everything.
var AcceptAll = ConfirmFunc(func(string) bool { return true })

// Controller turns player gestures into outbound actions or step answers.
// Gestures are gated by the interaction machine and pre-checked against the
// mirrored state. It must be driven from the session's event loop.
type Controller struct {
	store      *game.Store
	dispatcher *interaction.Dispatcher
	sender     interaction.Sender
	checker    *rules.LegalityChecker
	validator  *targeting.TargetValidator
	confirm    Confirmer
	notifier   game.Notifier
	logger     *zap.Logger
}

// NewController creates a controller. A nil confirmer accepts everything.
func NewController(store *game.Store, dispatcher *interaction.Dispatcher, sender interaction.Sender, notifier game.Notifier, confirm Confirmer, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirm == nil {
		confirm = AcceptAll
	}
	if notifier == nil {
		notifier = game.NotifierFunc(func(game.Notice) {})
	}
	return &Controller{
		store:      store,
		dispatcher: dispatcher,
		sender:     sender,
		checker:    rules.NewLegalityChecker(store.State()),
		validator:  targeting.NewTargetValidator(store.State()),
		confirm:    confirm,
		notifier:   notifier,
		logger:     logger,
	}
}

// ClickCell handles a click on board cell p.
func (c *Controller) ClickCell(ctx context.Context, p grid.Pos) error {
	machine := c.store.Machine()
	if err := machine.Allow(interaction.InputBoardCell); err != nil {
		return err
	}
	if machine.Answers(interaction.InputBoardCell) {
		a, _ := machine.Current()
		if err := c.validator.ValidatePosition(a.Requirement(), p); err != nil {
			return err
		}
		_, err := c.dispatcher.Submit(ctx, targeting.PosAnswer(p))
		c.store.ClearHighlights()
		return err
	}

	sel := c.store.Selection()
	switch sel.Kind {
	case game.SelectHand:
		return c.playFromHand(ctx, sel.Slot, p)
	case game.SelectLandDeck:
		return c.placeLand(ctx, sel.Slot, p)
	case game.SelectUnit:
		return c.moveSelected(ctx, sel.Pos, p)
	default:
		return c.selectUnit(ctx, p)
	}
}

// ClickHand handles a click on the local hand card at slot.
func (c *Controller) ClickHand(ctx context.Context, slot int) error {
	machine := c.store.Machine()
	if err := machine.Allow(interaction.InputHandCard); err != nil {
		return err
	}
	if machine.Answers(interaction.InputHandCard) {
		a, _ := machine.Current()
		if err := c.validator.ValidateHandIndex(a.Requirement(), slot); err != nil {
			return err
		}
		_, err := c.dispatcher.Submit(ctx, targeting.HandAnswer(slot))
		return err
	}

	st := c.store.State()
	hand := st.MyHand()
	if slot < 0 || slot >= len(hand) || hand[slot] == nil {
		return c.reject(rules.LegalityResult{Reason: "Please select a card"})
	}
	if sel := c.store.Selection(); sel.Kind == game.SelectHand && sel.Slot == slot {
		c.store.ClearSelection()
		return nil
	}

	hl := rules.HighlightsFor(hand[slot], st.Seat(), st.Board(), st.Mana())
	if _, monster := hand[slot].(*card.Monster); !monster && rules.Summarize(hl) == rules.CardUnplayable {
		return c.reject(rules.LegalityResult{Reason: "No valid targets for " + displayName(hand[slot].Base()) + "."})
	}
	c.store.Select(game.Selection{Kind: game.SelectHand, Slot: slot}, hl)
	return nil
}

// ClickLandDeck handles a click on the local land deck card at slot.
func (c *Controller) ClickLandDeck(ctx context.Context, slot int) error {
	if err := c.store.Machine().Allow(interaction.InputLandDeckCard); err != nil {
		return err
	}
	st := c.store.State()
	deck := st.MyLandDeck()
	if slot < 0 || slot >= len(deck) || deck[slot] == nil {
		return c.reject(rules.LegalityResult{Reason: "Please select a card"})
	}
	if sel := c.store.Selection(); sel.Kind == game.SelectLandDeck && sel.Slot == slot {
		c.store.ClearSelection()
		return nil
	}
	land, ok := deck[slot].(*card.Land)
	if !ok {
		return c.reject(rules.LegalityResult{Reason: "Only lands can be placed from the land deck."})
	}
	hl := rules.PlacementHighlights(land, st.Seat(), st.Board(), st.Mana())
	if rules.Summarize(hl) == rules.CardUnplayable {
		return c.reject(rules.LegalityResult{Reason: "Cannot place " + displayName(land.Info) + " anywhere."})
	}
	c.store.Select(game.Selection{Kind: game.SelectLandDeck, Slot: slot}, hl)
	return nil
}

// PickDeckCard answers a pending deck pick.
func (c *Controller) PickDeckCard(ctx context.Context, cardID string) error {
	return c.pickCard(ctx, interaction.InputDeckPick, cardID)
}

// PickGraveyardCard answers a pending graveyard pick.
func (c *Controller) PickGraveyardCard(ctx context.Context, cardID string) error {
	return c.pickCard(ctx, interaction.InputGraveyardPick, cardID)
}

func (c *Controller) pickCard(ctx context.Context, in interaction.Input, cardID string) error {
	machine := c.store.Machine()
	if err := machine.Allow(in); err != nil {
		return err
	}
	a, _ := machine.Current()
	if err := c.validator.ValidateCard(a.Requirement(), cardID); err != nil {
		return err
	}
	_, err := c.dispatcher.Submit(ctx, targeting.CardAnswer(cardID))
	return err
}

// Choices returns the cards offered by a pending deck or graveyard pick.
func (c *Controller) Choices() []targeting.CardChoice {
	a, ok := c.store.Machine().Current()
	if !ok {
		return nil
	}
	return c.validator.Choices(a.Requirement())
}

// EndTurn ends the local turn.
func (c *Controller) EndTurn(ctx context.Context) error {
	if err := c.store.Machine().Allow(interaction.InputEndTurn); err != nil {
		return err
	}
	if r := c.checker.CanAct(); !r.Legal {
		return c.reject(r)
	}
	if err := c.send(ctx, protocol.EndTurn(c.store.State().Seat())); err != nil {
		return err
	}
	c.store.ClearSelection()
	return nil
}

// Deselect drops the current selection.
func (c *Controller) Deselect() {
	c.store.ClearSelection()
}

// HandBadges returns the play status of every card in the local hand.
func (c *Controller) HandBadges() []rules.CardStatus {
	st := c.store.State()
	return badges(st, st.MyHand())
}

// LandDeckBadges returns the play status of every card in the local land deck.
func (c *Controller) LandDeckBadges() []rules.CardStatus {
	st := c.store.State()
	return badges(st, st.MyLandDeck())
}

func badges(st *game.State, cards card.List) []rules.CardStatus {
	b := st.Board()
	out := make([]rules.CardStatus, len(cards))
	for i, cd := range cards {
		out[i] = rules.Classify(cd, st.Seat(), b, st.Mana())
	}
	return out
}

func (c *Controller) playFromHand(ctx context.Context, slot int, p grid.Pos) error {
	st := c.store.State()
	hand := st.MyHand()
	if slot < 0 || slot >= len(hand) || hand[slot] == nil {
		c.store.ClearSelection()
		return c.reject(rules.LegalityResult{Reason: "Please select a card"})
	}
	seat := st.Seat()

	switch v := hand[slot].(type) {
	case *card.Monster:
		r := c.checker.CheckSummon(v, p)
		if !r.Legal {
			return c.reject(r)
		}
		prompt := fmt.Sprintf("Spend %d mana to summon %s?", v.Mana, displayName(v.Info))
		return c.confirmAndSend(ctx, prompt, protocol.Summon(seat, slot, p))
	case *card.Sorcery:
		r := c.checker.CheckPlacement(v, p)
		if !r.Legal {
			return c.reject(r)
		}
		prompt := fmt.Sprintf("Spend %d mana to activate %s here?", r.Highlight.Cost, displayName(v.Info))
		if r.Highlight.Status == rules.StatusFree {
			prompt = fmt.Sprintf("Activate %s here for free?", displayName(v.Info))
		}
		return c.confirmAndSend(ctx, prompt, protocol.ActivateSorcery(seat, slot, p))
	default:
		c.store.ClearSelection()
		return c.reject(rules.LegalityResult{Reason: "This card cannot be played from hand."})
	}
}

func (c *Controller) placeLand(ctx context.Context, slot int, p grid.Pos) error {
	st := c.store.State()
	deck := st.MyLandDeck()
	if slot < 0 || slot >= len(deck) {
		c.store.ClearSelection()
		return c.reject(rules.LegalityResult{Reason: "Please select a card"})
	}
	land, ok := deck[slot].(*card.Land)
	if !ok {
		c.store.ClearSelection()
		return c.reject(rules.LegalityResult{Reason: "Only lands can be placed from the land deck."})
	}
	r := c.checker.CheckPlacement(land, p)
	if !r.Legal {
		return c.reject(r)
	}
	prompt := fmt.Sprintf("Spend %d mana to create %s here?", r.Highlight.Cost, displayName(land.Info))
	if r.Highlight.Status == rules.StatusFree {
		prompt = fmt.Sprintf("Create %s here for free?", displayName(land.Info))
	}
	return c.confirmAndSend(ctx, prompt, protocol.PlaceLand(st.Seat(), slot, p))
}

func (c *Controller) selectUnit(ctx context.Context, p grid.Pos) error {
	if r := c.checker.CanAct(); !r.Legal {
		return c.reject(r)
	}
	st := c.store.State()
	seat := st.Seat()
	b := st.Board()

	occupant := b.Units.At(p)
	m, ok := occupant.(*card.Monster)
	if !ok || m.Owner != seat {
		reason := "Please select a card"
		if occupant != nil {
			reason = "Not your card"
		}
		return c.reject(rules.LegalityResult{Reason: reason})
	}

	if c.checker.CheckDirectAttack(p).Legal {
		prompt := fmt.Sprintf("Attack directly with %s and deal %d damage?", displayName(m.Info), m.Mana)
		if c.confirm.Confirm(prompt) {
			if err := c.send(ctx, protocol.DirectAttack(seat, p)); err != nil {
				return err
			}
			c.store.ClearSelection()
			return nil
		}
	}
	c.store.Select(game.Selection{Kind: game.SelectUnit, Pos: p}, rules.MoveHighlights(p, seat, m.Movement, b.Units))
	return nil
}

func (c *Controller) moveSelected(ctx context.Context, from, to grid.Pos) error {
	if from == to {
		c.store.ClearSelection()
		return nil
	}
	st := c.store.State()
	if m, ok := st.Board().Units.At(to).(*card.Monster); ok && m.Owner == st.Seat() {
		c.store.ClearSelection()
		return c.selectUnit(ctx, to)
	}
	r := c.checker.CheckMove(from, to)
	if !r.Legal {
		return c.reject(r)
	}
	if err := c.send(ctx, protocol.Move(st.Seat(), from, to)); err != nil {
		return err
	}
	c.store.ClearSelection()
	return nil
}

func (c *Controller) confirmAndSend(ctx context.Context, prompt string, msg protocol.Outbound) error {
	if !c.confirm.Confirm(prompt) {
		c.logger.Debug("action declined", zap.String("type", msg.Type))
		return nil
	}
	if err := c.send(ctx, msg); err != nil {
		return err
	}
	c.store.ClearSelection()
	return nil
}

func (c *Controller) send(ctx context.Context, msg protocol.Outbound) error {
	if err := c.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	c.logger.Debug("action sent", zap.String("type", msg.Type))
	return nil
}

func (c *Controller) reject(r rules.LegalityResult) error {
	level := game.LevelWarning
	if _, mana := r.Details["cost"]; mana {
		level = game.LevelError
	}
	c.notifier.Notify(game.Notice{Level: level, Message: r.Reason})
	return fmt.Errorf("%w: %s", ErrRejected, r.Reason)
}

func displayName(info card.Info) string {
	if info.Name != "" {
		return info.Name
	}
	return card.DisplayName(info.ID)
}
