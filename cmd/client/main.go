package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runeboard/runeboard-client/internal/client"
	"github.com/runeboard/runeboard-client/internal/config"
	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/repository"
	"github.com/runeboard/runeboard-client/internal/transport"
)

var (
	configPath = flag.String("config", "config/client.yaml", "path to configuration file")
	autoYes    = flag.Bool("yes", false, "confirm every paid or direct action without asking")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting client",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("username", cfg.Player.Username),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	opts := []client.SessionOption{
		client.WithLogger(logger),
		client.WithSettleDelay(cfg.Client.SettleDelay),
		client.WithNotifier(printNotifier{w: os.Stdout}),
		client.WithJournalDir(cfg.Journal.Dir),
	}

	if cfg.Journal.DSN != "" {
		db, err := repository.NewDB(ctx, cfg.Journal, logger)
		if err != nil {
			logger.Fatal("failed to connect to journal database", zap.Error(err))
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate journal database", zap.Error(err))
		}
		opts = append(opts, client.WithArchiver(repository.NewJournalStore(db, logger)))
	}

	scanner := bufio.NewScanner(os.Stdin)
	if *autoYes {
		opts = append(opts, client.WithConfirmer(client.AcceptAll))
	} else {
		opts = append(opts, client.WithConfirmer(lineConfirmer{in: scanner, out: os.Stdout}))
	}

	url := cfg.Server.URL()
	conn, err := transport.Dial(ctx, url, cfg.Player.Username, transport.Options{
		WriteTimeout: cfg.Client.WriteTimeout,
		PingInterval: cfg.Client.PingInterval,
		ReadLimit:    cfg.Client.ReadLimit,
		OutboxSize:   cfg.Client.OutboxSize,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect", zap.String("url", url), zap.Error(err))
	}
	logger.Info("connected", zap.String("url", url))

	session := client.NewSession(conn, cfg.Player.Username, cfg.Server.Room, opts...)

	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(ctx) }()
	go repl(ctx, session, scanner, os.Stdout, logger)

	if err := <-runErr; err != nil && !errors.Is(err, transport.ErrClosed) {
		logger.Error("session ended with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("client stopped")
}

// repl reads commands from in until EOF or quit, then closes the session.
func repl(ctx context.Context, session *client.Session, in *bufio.Scanner, out io.Writer, logger *zap.Logger) {
	defer session.Close()

	show := func() {
		err := session.Do(ctx, func(_ context.Context, c *client.Controller) error {
			return client.Render(out, session.Store(), c)
		})
		if err != nil && !errors.Is(err, client.ErrSessionClosed) {
			logger.Warn("render failed", zap.Error(err))
		}
	}

	fmt.Fprintln(out, client.CommandHelp)
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "quit", "q":
			return
		case "help", "?":
			fmt.Fprintln(out, client.CommandHelp)
			continue
		case "show", "s":
			show()
			continue
		}

		action, err := client.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		err = session.Do(ctx, action)
		switch {
		case errors.Is(err, client.ErrSessionClosed), errors.Is(err, context.Canceled):
			return
		case errors.Is(err, client.ErrRejected):
			// already reported through the notifier
		case err != nil:
			fmt.Fprintln(out, err)
		}
		show()
	}
}

// printNotifier writes notices to the terminal.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(n game.Notice) {
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}

// lineConfirmer asks on out and reads y/n from the REPL's scanner. It runs
// on the session loop while the REPL is blocked in Do, so the scanner is
// never read concurrently.
type lineConfirmer struct {
	in  *bufio.Scanner
	out io.Writer
}

func (l lineConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(l.out, "%s [y/N] ", prompt)
	if !l.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(l.in.Text()))
	return answer == "y" || answer == "yes"
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
