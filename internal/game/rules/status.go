package rules

import (
	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
)

// CardStatus is the single badge shown for a card in hand or land deck.
type CardStatus string

const (
	CardFree         CardStatus = "FREE"
	CardPayable      CardStatus = "PAYABLE"
	CardInsufficient CardStatus = "INSUFFICIENT"
	CardUnplayable   CardStatus = "UNPLAYABLE"
)

// Summarize reduces a highlight map to one status by priority
// FREE > PAYABLE > INSUFFICIENT. An empty map is UNPLAYABLE.
func Summarize(m HighlightMap) CardStatus {
	best := CardUnplayable
	for _, h := range m {
		switch h.Status {
		case StatusFree:
			return CardFree
		case StatusPayable:
			best = CardPayable
		case StatusInsufficient:
			if best == CardUnplayable {
				best = CardInsufficient
			}
		}
	}
	return best
}

// HighlightsFor returns the placement highlights for any card kind played
// from hand. Monsters use their summon row.
func HighlightsFor(c card.Card, seat grid.Seat, b board.Board, pool *mana.Pool) HighlightMap {
	switch v := c.(type) {
	case *card.Monster:
		return SummonHighlights(seat, v.Mana, b.Units)
	case card.Supported:
		return PlacementHighlights(v, seat, b, pool)
	default:
		return HighlightMap{}
	}
}

// Classify returns the badge for c held by seat.
func Classify(c card.Card, seat grid.Seat, b board.Board, pool *mana.Pool) CardStatus {
	if c == nil {
		return CardUnplayable
	}
	return Summarize(HighlightsFor(c, seat, b, pool))
}
