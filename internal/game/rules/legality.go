package rules

import (
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
)

// LegalityChecker predicts whether a local action will be accepted before it
// is sent. The server remains authoritative; a legal prediction can still be
// rejected.
type LegalityChecker struct {
	state StateAccessor
}

// StateAccessor provides the mirrored state needed for legality checks.
type StateAccessor interface {
	// Seat is the local player's seat.
	Seat() grid.Seat
	// Turn is the seat whose turn it is.
	Turn() grid.Seat
	// Board returns the current unit and land grids.
	Board() board.Board
	// Mana returns the mirrored pool.
	Mana() *mana.Pool
	// GameOver reports whether a final result has been received.
	GameOver() bool
}

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
	// Highlight is the predicted status and cost for the target cell when
	// Legal is true.
	Highlight Highlight
}

// NewLegalityChecker creates a new legality checker.
func NewLegalityChecker(state StateAccessor) *LegalityChecker {
	return &LegalityChecker{state: state}
}

// CanAct reports whether the local seat may take a turn action at all.
func (lc *LegalityChecker) CanAct() LegalityResult {
	if lc == nil || lc.state == nil {
		return LegalityResult{Legal: false, Reason: "Game not started."}
	}
	if lc.state.GameOver() {
		return LegalityResult{Legal: false, Reason: "The game is over."}
	}
	if lc.state.Turn() != lc.state.Seat() {
		return LegalityResult{
			Legal:  false,
			Reason: "It's not your turn.",
			Details: map[string]string{
				"turn": string(lc.state.Turn()),
				"seat": string(lc.state.Seat()),
			},
		}
	}
	return LegalityResult{Legal: true}
}

// CheckMove validates moving the local unit at from to the cell to.
func (lc *LegalityChecker) CheckMove(from, to grid.Pos) LegalityResult {
	if r := lc.CanAct(); !r.Legal {
		return r
	}
	seat := lc.state.Seat()
	b := lc.state.Board()
	m, ok := b.Units.At(from).(*card.Monster)
	if !ok || m.Owner != seat {
		return LegalityResult{
			Legal:   false,
			Reason:  "You can only move your own units.",
			Details: map[string]string{"from": from.Key()},
		}
	}
	h, ok := MoveHighlights(from, seat, m.Movement, b.Units).At(to)
	if !ok {
		return LegalityResult{
			Legal:  false,
			Reason: "Invalid move.",
			Details: map[string]string{
				"from": from.Key(),
				"to":   to.Key(),
			},
		}
	}
	return LegalityResult{Legal: true, Highlight: h}
}

// CheckSummon validates summoning m onto to.
func (lc *LegalityChecker) CheckSummon(m *card.Monster, to grid.Pos) LegalityResult {
	if r := lc.CanAct(); !r.Legal {
		return r
	}
	if m == nil {
		return LegalityResult{Legal: false, Reason: "No card selected."}
	}
	seat := lc.state.Seat()
	b := lc.state.Board()
	h, ok := SummonHighlights(seat, m.Mana, b.Units).At(to)
	if !ok {
		return LegalityResult{
			Legal:   false,
			Reason:  "Invalid summon position.",
			Details: map[string]string{"to": to.Key()},
		}
	}
	if pay := mana.CheckPayment(lc.state.Mana(), seat, h.Cost); !pay.Success {
		return notEnoughMana(m.Info, pay)
	}
	return LegalityResult{Legal: true, Highlight: h}
}

// CheckPlacement validates activating a sorcery or placing a land at to.
func (lc *LegalityChecker) CheckPlacement(c card.Supported, to grid.Pos) LegalityResult {
	if r := lc.CanAct(); !r.Legal {
		return r
	}
	if c == nil {
		return LegalityResult{Legal: false, Reason: "No card selected."}
	}
	seat := lc.state.Seat()
	h, ok := PlacementHighlights(c, seat, lc.state.Board(), lc.state.Mana()).At(to)
	if !ok {
		reason := "Activation needs not met at this tile."
		if c.Kind() == card.KindLand {
			reason = "Cannot place land here."
		}
		return LegalityResult{
			Legal:  false,
			Reason: reason,
			Details: map[string]string{
				"card": c.Base().ID,
				"to":   to.Key(),
			},
		}
	}
	return lc.checkPaid(c.Base(), h)
}

// CheckDirectAttack validates a direct attack by the local unit at from,
// which must stand on the opponent's home row.
func (lc *LegalityChecker) CheckDirectAttack(from grid.Pos) LegalityResult {
	if r := lc.CanAct(); !r.Legal {
		return r
	}
	seat := lc.state.Seat()
	b := lc.state.Board()
	m, ok := b.Units.At(from).(*card.Monster)
	if !ok || m.Owner != seat {
		return LegalityResult{Legal: false, Reason: "You can only attack with your own units."}
	}
	if from.X != board.FarRow(seat, b.Rows()) {
		return LegalityResult{
			Legal:   false,
			Reason:  "Unit must reach the opponent's back row to attack directly.",
			Details: map[string]string{"from": from.Key()},
		}
	}
	return LegalityResult{Legal: true, Highlight: Highlight{Status: StatusFree}}
}

func (lc *LegalityChecker) checkPaid(info card.Info, h Highlight) LegalityResult {
	if h.Status != StatusInsufficient {
		return LegalityResult{Legal: true, Highlight: h}
	}
	return notEnoughMana(info, mana.CheckPayment(lc.state.Mana(), lc.state.Seat(), h.Cost))
}

func notEnoughMana(info card.Info, pay mana.PaymentResult) LegalityResult {
	return LegalityResult{
		Legal:  false,
		Reason: "Not enough mana to use this card.",
		Details: map[string]string{
			"card":      info.ID,
			"cost":      fmt.Sprintf("%d", pay.Cost),
			"available": fmt.Sprintf("%d", pay.Available),
		},
	}
}
