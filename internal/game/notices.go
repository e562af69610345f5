package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game/card"
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/mana"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient message for the player.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs n at a level matching its severity.
func (l LogNotifier) Notify(n Notice) {
	if l.Logger == nil {
		return
	}
	switch n.Level {
	case LevelError:
		l.Logger.Warn(n.Message, zap.String("notice", string(n.Level)))
	default:
		l.Logger.Info(n.Message, zap.String("notice", string(n.Level)))
	}
}

func targetPrompt(cardID string) Notice {
	return Notice{Level: LevelWarning, Message: "Select a target for " + card.DisplayName(cardID)}
}

func turnNotice(turn, seat grid.Seat) Notice {
	if turn == seat {
		return Notice{Level: LevelSuccess, Message: "Your turn"}
	}
	return Notice{Level: LevelInfo, Message: "Opponent's turn"}
}

func manaNotice(d mana.Delta, seat grid.Seat) Notice {
	level := LevelSuccess
	if d.Change < 0 {
		level = LevelError
	}
	msg := fmt.Sprintf("%+d mana", d.Change)
	if d.Seat != seat {
		msg = "Opponent " + msg
	}
	return Notice{Level: level, Message: msg}
}

func gameOverNotice(result string) (Notice, bool) {
	switch result {
	case protocol.ResultVictory:
		return Notice{Level: LevelSuccess, Message: "Victory! You win!"}, true
	case protocol.ResultDefeat:
		return Notice{Level: LevelError, Message: "You lose!"}, true
	}
	return Notice{}, false
}
