package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/runeboard/runeboard-client/internal/game/board"
	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// checksumVersion changes whenever the canonical representation does.
const checksumVersion = 1

// Checksum is a deterministic digest of the mirrored state. Two clients that
// applied the same frames in the same order produce the same hash.
type Checksum struct {
	Hash    string
	Version int
}

// ComputeChecksum digests the mirrored state.
func (s *State) ComputeChecksum() (Checksum, error) {
	s.mu.RLock()
	data := s.canonical()
	s.mu.RUnlock()

	hash := sha256.New()
	if _, err := hash.Write([]byte(data)); err != nil {
		return Checksum{}, fmt.Errorf("failed to compute hash: %w", err)
	}
	return Checksum{Hash: hex.EncodeToString(hash.Sum(nil)), Version: checksumVersion}, nil
}

// VerifyChecksum reports whether the state matches expected.
func (s *State) VerifyChecksum(expected Checksum) (bool, error) {
	if expected.Version != checksumVersion {
		return false, fmt.Errorf("unsupported checksum version: %d", expected.Version)
	}
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// canonical renders the state independent of map iteration order. Callers
// hold s.mu.
func (s *State) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%t|%s|%d|%t|%s\n",
		s.seat, s.turn, s.gameOver, s.result, s.movesLeft, s.movesKnown, s.centerControl)

	writeGrid(&buf, "UNITS", s.board.Units)
	writeGrid(&buf, "LANDS", s.board.Lands)

	balances := s.pool.Snapshot()
	manaSeats := make([]string, 0, len(balances))
	for seat := range balances {
		manaSeats = append(manaSeats, string(seat))
	}
	sort.Strings(manaSeats)
	for _, seat := range manaSeats {
		fmt.Fprintf(&buf, "MANA:%s=%d\n", seat, balances[grid.Seat(seat)])
	}

	for _, seat := range s.seats() {
		fmt.Fprintf(&buf, "SEAT:%s|deck=%d\n", seat, s.deckSizes[seat])
		// hand order matters, slots are addressed by index
		buf.WriteString("  HAND:" + cardIDs(s.hands[seat]) + "\n")
		buf.WriteString("  GRAVEYARD:" + cardIDs(s.graveyards[seat]) + "\n")
		buf.WriteString("  LAND_DECK:" + cardIDs(s.landDecks[seat]) + "\n")
	}

	keys := make([]string, 0, len(s.actions))
	for k := range s.actions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "ACTIONS:%s=%s\n", k, compactJSON(s.actions[k]))
	}

	return buf.String()
}

func writeGrid(buf *bytes.Buffer, label string, g board.Grid) {
	fmt.Fprintf(buf, "%s:%dx%d\n", label, g.Rows(), g.Cols())
	for x, row := range g {
		for y, c := range row {
			if c == nil {
				continue
			}
			info := c.Base()
			fmt.Fprintf(buf, "  %d-%d:%s|%s|%s\n", x, y, info.ID, c.Kind(), info.Owner)
		}
	}
}

func cardIDs(l card.List) string {
	ids := make([]string, len(l))
	for i, c := range l {
		if c == nil {
			ids[i] = "-"
			continue
		}
		ids[i] = c.Base().ID
	}
	return strings.Join(ids, ",")
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
