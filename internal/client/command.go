package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// ErrUnknownCommand is returned by ParseCommand for unrecognised input.
var ErrUnknownCommand = errors.New("unknown command")

// CommandHelp lists the line commands understood by ParseCommand.
const CommandHelp = `commands:
  cell X Y     click board cell (row X, column Y)
  hand N       click hand card N
  land N       click land deck card N
  deck ID      pick card ID from the deck
  grave ID     pick card ID from the graveyard
  end          end the turn
  cancel       drop the current selection`

// ParseCommand turns one input line into an action.
func ParseCommand(line string) (Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrUnknownCommand
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "cell", "c":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: cell X Y")
		}
		x, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad row %q: %w", args[0], err)
		}
		y, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("bad column %q: %w", args[1], err)
		}
		p := grid.Pos{X: x, Y: y}
		return func(ctx context.Context, c *Controller) error { return c.ClickCell(ctx, p) }, nil

	case "hand", "h", "land", "l":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s N", name)
		}
		slot, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad slot %q: %w", args[0], err)
		}
		if name == "land" || name == "l" {
			return func(ctx context.Context, c *Controller) error { return c.ClickLandDeck(ctx, slot) }, nil
		}
		return func(ctx context.Context, c *Controller) error { return c.ClickHand(ctx, slot) }, nil

	case "deck", "grave", "g":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s ID", name)
		}
		id := args[0]
		if name == "deck" {
			return func(ctx context.Context, c *Controller) error { return c.PickDeckCard(ctx, id) }, nil
		}
		return func(ctx context.Context, c *Controller) error { return c.PickGraveyardCard(ctx, id) }, nil

	case "end", "e":
		return func(ctx context.Context, c *Controller) error { return c.EndTurn(ctx) }, nil

	case "cancel", "x":
		return func(_ context.Context, c *Controller) error {
			c.Deselect()
			return nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}
