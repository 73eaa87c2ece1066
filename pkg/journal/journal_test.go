package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"initiative/internal/testutil"
)

func TestWriter_Log_WritesEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	ts := time.Date(2026, 2, 8, 14, 30, 0, 0, time.UTC)

	require.NoError(t, w.Log(Entry{
		Timestamp: ts,
		Type:      TypeCreate,
		Combat:    "c-1",
	}))

	require.NoError(t, w.Log(Entry{
		Timestamp: ts,
		Type:      TypeJoin,
		Combat:    "c-1",
		Combatant: "m-1",
		Requested: "Goblin",
		Assigned:  "Goblin 1",
	}))

	r := NewReader(path)
	entries, err := r.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, TypeCreate, entries[0].Type)
	assert.Equal(t, "c-1", entries[0].Combat)
	assert.Empty(t, entries[0].Requested)

	assert.Equal(t, TypeJoin, entries[1].Type)
	assert.Equal(t, "Goblin", entries[1].Requested)
	assert.Equal(t, "Goblin 1", entries[1].Assigned)
	assert.True(t, entries[1].Timestamp.Equal(ts))
}

func TestWriter_Log_SetsTimestampWhenZero(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	before := time.Now().UTC()
	require.NoError(t, w.Log(Entry{Type: TypeLeave, Combat: "c-1", Combatant: "m-1"}))
	after := time.Now().UTC()

	r := NewReader(path)
	entries, err := r.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.False(t, entries[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, entries[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestWriter_Log_AppendsToExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Log(Entry{Type: TypeCreate, Combat: "c-1"}))
	require.NoError(t, w.Close())

	w, err = NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Log(Entry{Type: TypeCreate, Combat: "c-2"}))
	require.NoError(t, w.Close())

	entries, err := NewReader(path).Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c-2", entries[1].Combat)

	lines := strings.Split(strings.TrimSpace(testutil.ReadFile(t, path)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"type":"create"`)
	assert.Contains(t, lines[1], `"combat":"c-2"`)
	assert.NotContains(t, lines[1], `"requested"`)
}

func TestReader_Entries_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	r := NewReader(path)
	entries, err := r.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReader_Entries_NonexistentFile(t *testing.T) {
	t.Parallel()

	r := NewReader(filepath.Join(t.TempDir(), "missing.jsonl"))
	_, err := r.Entries()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader_Entries_CorruptedLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.jsonl")
	content := "{\"type\":\"join\",\"combat\":\"c-1\",\"requested\":\"Orc\",\"assigned\":\"Orc\"}\nnot-json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r := NewReader(path)
	entries, err := r.Entries()
	require.Error(t, err, "should fail on corrupted line")
	assert.Contains(t, err.Error(), "line 2")
	// Should have parsed the first valid entry.
	require.Len(t, entries, 1)
	assert.Equal(t, "Orc", entries[0].Assigned)
}

func TestReader_ForCombat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Log(Entry{Type: TypeCreate, Combat: "c-1"}))
	require.NoError(t, w.Log(Entry{Type: TypeCreate, Combat: "c-2"}))
	require.NoError(t, w.Log(Entry{Type: TypeJoin, Combat: "c-1", Requested: "Orc", Assigned: "Orc"}))
	require.NoError(t, w.Log(Entry{Type: TypeJoin, Combat: "c-2", Requested: "Elf", Assigned: "Elf"}))
	require.NoError(t, w.Close())

	entries, err := NewReader(path).ForCombat("c-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, TypeJoin, entries[0].Type)
	assert.Equal(t, TypeCreate, entries[1].Type)
}

func TestReader_Renamed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Log(Entry{Type: TypeJoin, Combat: "c-1", Requested: "Goblin", Assigned: "Goblin"}))
	require.NoError(t, w.Log(Entry{Type: TypeJoin, Combat: "c-1", Requested: "Goblin", Assigned: "Goblin 1"}))
	require.NoError(t, w.Log(Entry{Type: TypeLeave, Combat: "c-1", Combatant: "m-2"}))
	require.NoError(t, w.Close())

	renamed, err := NewReader(path).Renamed()
	require.NoError(t, err)
	require.Len(t, renamed, 1)
	assert.Equal(t, "Goblin 1", renamed[0].Assigned)
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "concurrent.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	const numWriters = 10
	const entriesPerWriter = 20

	done := make(chan struct{})
	for range numWriters {
		go func() {
			defer func() { done <- struct{}{} }()
			for range entriesPerWriter {
				_ = w.Log(Entry{Type: TypeJoin, Combat: "c-1", Requested: "Rat", Assigned: "Rat"})
			}
		}()
	}

	for range numWriters {
		<-done
	}

	r := NewReader(path)
	entries, err := r.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, numWriters*entriesPerWriter)
}
