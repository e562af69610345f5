package game

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestJournalRecord(t *testing.T) {
	j := NewJournal("s-1", "default", "alice")
	assert.Equal(t, 0, j.Size())
	_, ok := j.Last()
	assert.False(t, ok)

	first := j.Record(Entry{Type: "init", Frame: []byte(`{"type":"init"}`)})
	second := j.Record(Entry{Frame: []byte(`{"turn":"1"}`)})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.False(t, first.Received.IsZero())
	assert.Equal(t, 2, j.Size())

	last, ok := j.Last()
	require.True(t, ok)
	assert.Equal(t, second.Seq, last.Seq)

	e, ok := j.EntryAt(0)
	require.True(t, ok)
	assert.Equal(t, "init", e.Type)
	_, ok = j.EntryAt(2)
	assert.False(t, ok)
	_, ok = j.EntryAt(-1)
	assert.False(t, ok)
}

func TestJournalSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal("s-42", "room-7", "alice")
	j.Record(Entry{Type: "init", Frame: []byte(initFrame), Checksum: "abc"})
	j.Record(Entry{Frame: []byte(`{"turn":"2"}`), Received: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})

	path, err := j.SaveToFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "s-42.journal"), path)
	assert.FileExists(t, path)

	loaded, err := LoadJournalFromFile(dir, "s-42")
	require.NoError(t, err)
	assert.Equal(t, "s-42", loaded.SessionID)
	assert.Equal(t, "room-7", loaded.Room)
	assert.Equal(t, "alice", loaded.Username)
	require.Equal(t, 2, loaded.Size())

	entries := loaded.Entries()
	assert.Equal(t, "abc", entries[0].Checksum)
	assert.Equal(t, []byte(`{"turn":"2"}`), entries[1].Frame)
	assert.True(t, entries[1].Received.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	// sequence numbering continues after a load
	next := loaded.Record(Entry{Frame: []byte(`{}`)})
	assert.Equal(t, uint64(3), next.Seq)
}

func TestLoadJournalMissingFile(t *testing.T) {
	_, err := LoadJournalFromFile(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestReplayReproducesSession(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.feed(t,
		initFrame,
		`{"board":`+boardBefore+`,"hand1":[{"id":"s1","type":"sorcery","owner":"1","mana":2}],"turn":"1"}`,
		`{"board":`+boardAfter+`,"from":[2,1],"to":[1,1],"success":true}`,
		`{"mana":{"1":1,"2":4},"deck_sizes":{"1":20,"2":19},"moves_left":0}`,
	)
	h.rec.Flush()
	require.Equal(t, 4, h.journal.Size())

	want, err := h.store.State().ComputeChecksum()
	require.NoError(t, err)

	st, err := Replay(h.journal, zaptest.NewLogger(t))
	require.NoError(t, err)
	got, err := st.ComputeChecksum()
	require.NoError(t, err)
	assert.Equal(t, want.Hash, got.Hash)
	assert.Equal(t, 19, st.DeckSize("2"))
}

func TestReplayDetectsTampering(t *testing.T) {
	h := newHarness(t, 0)
	h.feed(t, initFrame, `{"mana":{"1":5}}`)

	j := NewJournal("s-1", "default", "alice")
	for i, e := range h.journal.Entries() {
		if i == 1 {
			e.Frame = []byte(`{"mana":{"1":6}}`)
		}
		j.Record(e)
	}

	_, err := Replay(j, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}
