package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/interaction"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		line    string
		unknown bool
	}{
		{line: "", unknown: true},
		{line: "   ", unknown: true},
		{line: "fly 1 2", unknown: true},
		{line: "cell 1"},
		{line: "cell a 1"},
		{line: "c 1 b"},
		{line: "hand"},
		{line: "land x"},
		{line: "deck"},
		{line: "grave a b"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			action, err := ParseCommand(tt.line)
			require.Error(t, err)
			assert.Nil(t, action)
			assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownCommand))
		})
	}
}

func TestParseCommand_DrivesController(t *testing.T) {
	f := newFixture(t)
	f.standard(t)
	ctx := context.Background()

	run := func(line string) error {
		t.Helper()
		action, err := ParseCommand(line)
		require.NoError(t, err)
		return action(ctx, f.ctrl)
	}

	require.NoError(t, run("C 5 2"))
	assert.Equal(t, game.SelectUnit, f.store.Selection().Kind)
	require.NoError(t, run("x"))
	assert.Equal(t, game.SelectNone, f.store.Selection().Kind)

	require.NoError(t, run("hand 1"))
	assert.Equal(t, game.Selection{Kind: game.SelectHand, Slot: 1}, f.store.Selection())
	require.NoError(t, run("cancel"))

	require.NoError(t, run("l 0"))
	assert.Equal(t, game.Selection{Kind: game.SelectLandDeck, Slot: 0}, f.store.Selection())
	require.NoError(t, run("cell 4 4"))

	assert.ErrorIs(t, run("deck c9"), interaction.ErrNotAwaiting)
	assert.ErrorIs(t, run("g raise_dead"), interaction.ErrNotAwaiting)

	require.NoError(t, run("end"))
	assert.Equal(t, []protocol.Outbound{
		protocol.PlaceLand(grid.SeatOne, 0, grid.Pos{X: 4, Y: 4}),
		protocol.EndTurn(grid.SeatOne),
	}, f.sender.frames())
}
