package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game"
)

// ErrJournalNotFound is returned when no journal has the requested session id.
var ErrJournalNotFound = errors.New("journal not found")

// JournalSummary is one row of the journal index.
type JournalSummary struct {
	SessionID  string
	Room       string
	Username   string
	Started    time.Time
	Archived   time.Time
	EntryCount int
}

// JournalStore archives match journals in Postgres.
type JournalStore struct {
	db     *DB
	logger *zap.Logger
}

// NewJournalStore creates a store on db.
func NewJournalStore(db *DB, logger *zap.Logger) *JournalStore {
	return &JournalStore{db: db, logger: logger}
}

// Archive writes j, replacing any earlier copy with the same session id.
func (s *JournalStore) Archive(ctx context.Context, j *game.Journal) error {
	entries := j.Entries()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO match_journals (session_id, room, username, started_at, archived_at, entry_count)
		VALUES ($1, $2, $3, $4, now(), $5)
		ON CONFLICT (session_id) DO UPDATE
		SET room = EXCLUDED.room,
			username = EXCLUDED.username,
			started_at = EXCLUDED.started_at,
			archived_at = now(),
			entry_count = EXCLUDED.entry_count
	`, j.SessionID, j.Room, j.Username, j.Started, len(entries))
	if err != nil {
		return fmt.Errorf("failed to write journal header: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM match_journal_entries WHERE session_id = $1`, j.SessionID); err != nil {
		return fmt.Errorf("failed to clear journal entries: %w", err)
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{j.SessionID, int64(e.Seq), e.Received, e.Type, string(e.Frame), e.Checksum}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"match_journal_entries"},
		[]string{"session_id", "seq", "received_at", "frame_type", "frame", "checksum"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy journal entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal: %w", err)
	}
	s.logger.Info("journal archived",
		zap.String("session_id", j.SessionID),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// Load reads the journal of sessionID.
func (s *JournalStore) Load(ctx context.Context, sessionID string) (*game.Journal, error) {
	j := game.NewJournal(sessionID, "", "")
	err := s.db.Pool.QueryRow(ctx, `
		SELECT room, username, started_at FROM match_journals WHERE session_id = $1
	`, sessionID).Scan(&j.Room, &j.Username, &j.Started)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJournalNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal header: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT received_at, frame_type, frame::text, checksum
		FROM match_journal_entries
		WHERE session_id = $1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e     game.Entry
			frame string
		)
		if err := rows.Scan(&e.Received, &e.Type, &frame, &e.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Frame = []byte(frame)
		j.Record(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal entries: %w", err)
	}
	return j, nil
}

// List returns the most recently archived journals, newest first.
func (s *JournalStore) List(ctx context.Context, limit int) ([]JournalSummary, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT session_id, room, username, started_at, archived_at, entry_count
		FROM match_journals
		ORDER BY archived_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	var out []JournalSummary
	for rows.Next() {
		var js JournalSummary
		if err := rows.Scan(&js.SessionID, &js.Room, &js.Username, &js.Started, &js.Archived, &js.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan journal summary: %w", err)
		}
		out = append(out, js)
	}
	return out, rows.Err()
}

// Delete removes the journal of sessionID and its entries.
func (s *JournalStore) Delete(ctx context.Context, sessionID string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM match_journals WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrJournalNotFound, sessionID)
	}
	return nil
}

var _ game.Archiver = (*JournalStore)(nil)
