package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/rules"
)

var statusMarks = map[rules.CellStatus]string{
	rules.StatusFree:         "*",
	rules.StatusPayable:      "$",
	rules.StatusInsufficient: "!",
}

// Render writes a plain text view of the session: board with highlights,
// mana, hand and land deck with badges, and the pending step.
func Render(w io.Writer, s *game.Store, c *Controller) error {
	var b strings.Builder
	st := s.State()
	seat := st.Seat()
	board := st.Board()
	hl := s.Highlights()

	targets := rules.HighlightMap{}
	for _, p := range s.TargetCells() {
		targets.Set(p, rules.Highlight{})
	}

	fmt.Fprintf(&b, "seat %s | turn %s | mana %d (opponent %d)", orDash(string(seat)), orDash(string(st.Turn())),
		st.Mana().Balance(seat), st.Mana().Balance(seat.Opponent()))
	if moves, ok := st.MovesLeft(); ok {
		fmt.Fprintf(&b, " | moves %d", moves)
	}
	b.WriteString("\n")

	b.WriteString("    ")
	for y := 0; y < board.Cols(); y++ {
		fmt.Fprintf(&b, " %-4d", y)
	}
	b.WriteString("\n")
	for x := 0; x < board.Rows(); x++ {
		fmt.Fprintf(&b, "%-3d ", x)
		for y := 0; y < board.Cols(); y++ {
			p := grid.Pos{X: x, Y: y}
			mark := " "
			if h, ok := hl.At(p); ok {
				mark = statusMarks[h.Status]
			} else if targets.Has(p) {
				mark = "?"
			}
			fmt.Fprintf(&b, "[%s%s]", cellCode(board.Units.At(p), board.Lands.At(p)), mark)
		}
		b.WriteString("\n")
	}

	writeCards(&b, "hand", st.MyHand(), c.HandBadges())
	writeCards(&b, "land deck", st.MyLandDeck(), c.LandDeckBadges())

	if a, ok := s.Machine().Current(); ok {
		owner := "opponent"
		if a.Owner == seat {
			owner = "you"
		}
		fmt.Fprintf(&b, "awaiting %s from %s", a.Kind, owner)
		if a.CardID != "" {
			fmt.Fprintf(&b, " (%s)", card.DisplayName(a.CardID))
		}
		b.WriteString("\n")
		for _, ch := range c.Choices() {
			fmt.Fprintf(&b, "  - %s %s\n", ch.ID, ch.Name)
		}
	}
	if st.GameOver() {
		fmt.Fprintf(&b, "game over: %s\n", orDash(st.Result()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCards(b *strings.Builder, label string, cards card.List, badges []rules.CardStatus) {
	fmt.Fprintf(b, "%s:", label)
	if len(cards) == 0 {
		b.WriteString(" (empty)\n")
		return
	}
	b.WriteString("\n")
	for i, cd := range cards {
		if cd == nil {
			fmt.Fprintf(b, "  %d: ?\n", i)
			continue
		}
		info := cd.Base()
		fmt.Fprintf(b, "  %d: %s [%s, %d mana] %s\n", i, displayName(info), cd.Kind(), info.Mana, badges[i])
	}
}

// cellCode is two characters: the unit kind and owner, or the land owner in
// lower case.
func cellCode(unit, land card.Card) string {
	switch {
	case unit != nil:
		return strings.ToUpper(string(unit.Kind())[:1]) + string(unit.Base().Owner)
	case land != nil:
		return "l" + string(land.Base().Owner)
	default:
		return ".."
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
