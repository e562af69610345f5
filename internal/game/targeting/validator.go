package targeting

import (
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// TargetValidator checks a local pick against a pending step before the
// answer is sent. The server re-validates every answer.
type TargetValidator struct {
	gameState TargetGameStateAccessor
}

// TargetGameStateAccessor provides the mirrored state needed for target
// validation.
type TargetGameStateAccessor interface {
	// InBounds reports whether p lies on the board
	InBounds(p grid.Pos) bool
	// HandSize is the number of cards in the local hand
	HandSize() int
	// GraveyardChoices lists the local graveyard as pickable cards
	GraveyardChoices() []CardChoice
}

// TargetRequirement is what a pending step asks for.
type TargetRequirement struct {
	Type        TargetType
	Suggestions Suggestions
	// Description is a human-readable description of the requirement
	Description string
}

// NewTargetValidator creates a new target validator.
func NewTargetValidator(gameState TargetGameStateAccessor) *TargetValidator {
	return &TargetValidator{gameState: gameState}
}

// Choices returns the cards offered for a card pick. Graveyard picks without
// suggestions fall back to the whole local graveyard.
func (tv *TargetValidator) Choices(req TargetRequirement) []CardChoice {
	if !req.Type.IsCard() {
		return nil
	}
	if len(req.Suggestions.Cards) > 0 {
		return req.Suggestions.Cards
	}
	if req.Type == TargetTypeGraveyardCard && tv != nil && tv.gameState != nil {
		return tv.gameState.GraveyardChoices()
	}
	return nil
}

// ValidatePosition checks a cell pick. When the step suggested positions only
// those are accepted; otherwise any on-board cell is.
func (tv *TargetValidator) ValidatePosition(req TargetRequirement, p grid.Pos) error {
	if !req.Type.IsCell() {
		return fmt.Errorf("%w: %s does not take a position", ErrWrongKind, req.Type)
	}
	if len(req.Suggestions.Positions) > 0 {
		if !req.Suggestions.HasPosition(p) {
			return fmt.Errorf("%w: %s", ErrNotSuggested, p)
		}
		return nil
	}
	if tv != nil && tv.gameState != nil && !tv.gameState.InBounds(p) {
		return fmt.Errorf("%w: %s is off the board", ErrNotSuggested, p)
	}
	return nil
}

// ValidateCard checks a deck or graveyard pick against the offered choices.
func (tv *TargetValidator) ValidateCard(req TargetRequirement, cardID string) error {
	if !req.Type.IsCard() {
		return fmt.Errorf("%w: %s does not take a card", ErrWrongKind, req.Type)
	}
	if cardID == "" {
		return fmt.Errorf("%w: empty card id", ErrNotSuggested)
	}
	for _, c := range tv.Choices(req) {
		if c.ID == cardID {
			return nil
		}
	}
	return fmt.Errorf("%w: card %s", ErrNotSuggested, cardID)
}

// ValidateHandIndex checks a discard pick.
func (tv *TargetValidator) ValidateHandIndex(req TargetRequirement, index int) error {
	if req.Type != TargetTypeHandSlot {
		return fmt.Errorf("%w: %s does not take a hand slot", ErrWrongKind, req.Type)
	}
	if index < 0 {
		return fmt.Errorf("%w: hand slot %d", ErrNotSuggested, index)
	}
	if tv != nil && tv.gameState != nil && index >= tv.gameState.HandSize() {
		return fmt.Errorf("%w: hand slot %d of %d", ErrNotSuggested, index, tv.gameState.HandSize())
	}
	return nil
}
