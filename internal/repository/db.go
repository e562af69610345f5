package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/config"
)

// ErrNoDSN is returned by NewDB when no connection string is configured.
var ErrNoDSN = errors.New("journal dsn not configured")

// DB wraps the Postgres connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to Postgres and verifies the connection.
func NewDB(ctx context.Context, cfg config.JournalConfig, logger *zap.Logger) (*DB, error) {
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &DB{Pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS match_journals (
	session_id  TEXT PRIMARY KEY,
	room        TEXT NOT NULL,
	username    TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	entry_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS match_journal_entries (
	session_id  TEXT NOT NULL REFERENCES match_journals (session_id) ON DELETE CASCADE,
	seq         BIGINT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL,
	frame_type  TEXT NOT NULL,
	frame       JSONB NOT NULL,
	checksum    TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// Migrate creates the journal tables when they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return nil
}
