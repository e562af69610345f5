package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/config"
	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/repository"
)

var configPath = flag.String("config", "config/client.yaml", "path to configuration file")

const usage = `usage: journal [-config FILE] COMMAND
  list [N]           list the N most recent archived journals
  replay ID          replay an archived journal and verify its checksums
  import ID          archive the journal ID saved in journal.dir
  delete ID          delete an archived journal`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewDB(ctx, cfg.Journal, logger)
	if err != nil {
		logger.Fatal("failed to connect to journal database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate journal database", zap.Error(err))
	}
	store := repository.NewJournalStore(db, logger)

	if err := run(ctx, store, cfg.Journal.Dir, args, logger); err != nil {
		logger.Fatal("command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(ctx context.Context, store *repository.JournalStore, dir string, args []string, logger *zap.Logger) error {
	need := func(n int) error {
		if len(args) < n+1 {
			return fmt.Errorf("%s needs %d argument(s)\n%s", args[0], n, usage)
		}
		return nil
	}

	switch args[0] {
	case "list":
		limit := 20
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad limit %q: %w", args[1], err)
			}
			limit = n
		}
		summaries, err := store.List(ctx, limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tROOM\tUSER\tSTARTED\tFRAMES")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.SessionID, s.Room, s.Username, s.Started.Format(time.RFC3339), s.EntryCount)
		}
		return w.Flush()

	case "replay":
		if err := need(1); err != nil {
			return err
		}
		j, err := store.Load(ctx, args[1])
		if err != nil {
			return err
		}
		st, err := game.Replay(j, logger)
		if err != nil {
			return err
		}
		sum, err := st.ComputeChecksum()
		if err != nil {
			return err
		}
		fmt.Printf("replayed %d frames, seat %s, turn %s, final checksum %s\n", j.Size(), st.Seat(), st.Turn(), sum.Hash)
		if st.GameOver() {
			fmt.Printf("result: %s\n", st.Result())
		}
		return nil

	case "import":
		if err := need(1); err != nil {
			return err
		}
		j, err := game.LoadJournalFromFile(dir, args[1])
		if err != nil {
			return err
		}
		if _, err := game.Replay(j, logger); err != nil {
			return fmt.Errorf("refusing to import: %w", err)
		}
		if err := store.Archive(ctx, j); err != nil {
			return err
		}
		fmt.Printf("archived %s (%d frames)\n", j.SessionID, j.Size())
		return nil

	case "delete":
		if err := need(1); err != nil {
			return err
		}
		if err := store.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[1])
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}
