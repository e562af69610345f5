package client

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

func TestRender_BoardHandAndDeck(t *testing.T) {
	f := newFixture(t)
	f.standard(t)
	require.NoError(t, f.ctrl.ClickCell(context.Background(), grid.Pos{X: 5, Y: 2}))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, f.store, f.ctrl))
	out := buf.String()

	assert.Contains(t, out, "seat 1 | turn 1 | mana 3 (opponent 3)\n")
	assert.Contains(t, out, "1   [.. ][.. ][.. ][.. ][M2 ][.. ]\n")
	assert.Contains(t, out, "2   [.. ][.. ][l1 ][.. ][.. ][.. ]\n")
	assert.Contains(t, out, "3   [.. ][.. ][..*][.. ][.. ][.. ]\n")
	assert.Contains(t, out, "5   [.. ][.. ][M1 ][.. ][.. ][.. ]\n")
	assert.Contains(t, out, "  0: Imp [monster, 2 mana] PAYABLE\n")
	assert.Contains(t, out, "  1: Fire Bolt [sorcery, 2 mana] FREE\n")
	assert.Contains(t, out, "  2: Frost [sorcery, 1 mana] UNPLAYABLE\n")
	assert.Contains(t, out, "land deck:\n  0: Forest [land, 1 mana] FREE\n")
	assert.NotContains(t, out, "awaiting")
}

func TestRender_PendingStep(t *testing.T) {
	f := newFixture(t)
	f.standard(t)
	f.feed(t, `{"interaction":{"owner":"1","card_id":"raise_dead","awaiting":{"kind":"select_graveyard_card"}}}`)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, f.store, f.ctrl))
	assert.Contains(t, buf.String(), "awaiting select_graveyard_card from you (Raise Dead)\n  - raise_dead Raise Dead\n")

	f.feed(t, `{"interaction":{"owner":"1","awaiting":{"kind":"select_board_target","suggestions":[[0,0]]}}}`)
	buf.Reset()
	require.NoError(t, Render(&buf, f.store, f.ctrl))
	assert.Contains(t, buf.String(), "0   [..?][.. ]")
}

func TestRender_EmptyAndGameOver(t *testing.T) {
	f := newFixture(t)
	f.feed(t, `{"type":"game-over","game_over":{"result":"victory","winner":"1"}}`)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, f.store, f.ctrl))
	out := buf.String()
	assert.Contains(t, out, "seat - | turn -")
	assert.Contains(t, out, "hand: (empty)\n")
	assert.Contains(t, out, "game over: victory\n")
}
