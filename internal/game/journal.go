package game

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game/interaction"
)

// Entry is one applied inbound frame.
type Entry struct {
	Seq      uint64
	Received time.Time
	Type     string
	Frame    []byte
	// Checksum is the state hash right after the frame was applied
	Checksum string
}

// Journal records every inbound frame applied to the mirrored state, in
// order, so that a session can be archived and replayed.
type Journal struct {
	SessionID string
	Room      string
	Username  string
	Started   time.Time

	mu      sync.RWMutex
	entries []Entry
	seq     uint64
}

// NewJournal creates an empty journal.
func NewJournal(sessionID, room, username string) *Journal {
	return &Journal{
		SessionID: sessionID,
		Room:      room,
		Username:  username,
		Started:   time.Now().UTC(),
	}
}

// Record appends an entry, assigning the next sequence number, and returns it.
func (j *Journal) Record(e Entry) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	e.Seq = j.seq
	if e.Received.IsZero() {
		e.Received = time.Now().UTC()
	}
	j.entries = append(j.entries, e)
	return e
}

// Size returns the number of recorded entries.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// EntryAt returns the entry at a specific index.
func (j *Journal) EntryAt(index int) (Entry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if index >= 0 && index < len(j.entries) {
		return j.entries[index], true
	}
	return Entry{}, false
}

// Entries returns a copy of all entries.
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Entry(nil), j.entries...)
}

// Last returns the most recent entry.
func (j *Journal) Last() (Entry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.entries) == 0 {
		return Entry{}, false
	}
	return j.entries[len(j.entries)-1], true
}

// journalMetadata heads a saved journal file
type journalMetadata struct {
	SessionID  string
	Room       string
	Username   string
	Started    time.Time
	Saved      time.Time
	Version    int
	EntryCount int
}

const journalVersion = 1

// SaveToFile writes the journal to <directory>/<session>.journal as a gzipped
// gob stream.
func (j *Journal) SaveToFile(directory string) (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := journalPath(directory, j.SessionID)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := journalMetadata{
		SessionID:  j.SessionID,
		Room:       j.Room,
		Username:   j.Username,
		Started:    j.Started,
		Saved:      time.Now().UTC(),
		Version:    journalVersion,
		EntryCount: len(j.entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range j.entries {
		if err := encoder.Encode(&j.entries[i]); err != nil {
			return "", fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to flush journal: %w", err)
	}
	return filename, nil
}

// LoadJournalFromFile reads a journal written by SaveToFile.
func LoadJournalFromFile(directory, sessionID string) (*Journal, error) {
	file, err := os.Open(journalPath(directory, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata journalMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", metadata.Version)
	}

	j := &Journal{
		SessionID: metadata.SessionID,
		Room:      metadata.Room,
		Username:  metadata.Username,
		Started:   metadata.Started,
		entries:   make([]Entry, 0, metadata.EntryCount),
	}
	for i := 0; i < metadata.EntryCount; i++ {
		var e Entry
		if err := decoder.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		j.entries = append(j.entries, e)
		j.seq = e.Seq
	}
	return j, nil
}

func journalPath(directory, sessionID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.journal", sessionID))
}

// Archiver stores finished journals somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, j *Journal) error
}

// Replay feeds every frame of j into a fresh mirror and checks that each
// recorded checksum is reproduced. It returns the rebuilt state.
func Replay(j *Journal, logger *zap.Logger) (*State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := NewStore(NewState(j.Username), interaction.NewMachine(logger))
	r := NewReconciler(store, logger)

	for _, e := range j.Entries() {
		if err := r.HandleFrame(e.Frame); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		r.Flush()
		sum, err := store.State().ComputeChecksum()
		if err != nil {
			return nil, err
		}
		if e.Checksum != "" && sum.Hash != e.Checksum {
			return nil, fmt.Errorf("entry %d: checksum mismatch", e.Seq)
		}
	}
	logger.Debug("journal replayed",
		zap.String("session_id", j.SessionID),
		zap.Int("entries", j.Size()),
	)
	return store.State(), nil
}
