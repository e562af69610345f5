package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/replayroom"
)

var (
	addr    = flag.String("addr", ":8000", "listen address")
	dir     = flag.String("dir", "journals", "directory holding saved journals")
	session = flag.String("session", "", "session id of the journal to serve")
	pace    = flag.Duration("pace", 500*time.Millisecond, "pause between frames")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *session == "" {
		logger.Fatal("-session is required")
	}
	journal, err := game.LoadJournalFromFile(*dir, *session)
	if err != nil {
		logger.Fatal("failed to load journal", zap.Error(err))
	}

	room := replayroom.New(journal, *pace, logger)
	srv := &http.Server{Addr: *addr, Handler: room}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logger.Info("replay room listening",
		zap.String("addr", *addr),
		zap.String("session_id", journal.SessionID),
		zap.String("recorded_by", journal.Username),
		zap.Int("frames", journal.Size()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
