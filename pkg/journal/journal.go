// Package journal provides an append-only log of roster changes.
// Every combat creation, join and departure is written as one JSON line
// after the change is committed to the store, so the journal records which
// name each combatant asked for and which name it was given.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Entry types.
const (
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeLeave  = "leave"
	TypeDelete = "delete"
)

// Entry represents a single roster change logged to the journal.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Combat    string    `json:"combat"`
	Combatant string    `json:"combatant,omitempty"`
	Requested string    `json:"requested,omitempty"` // name asked for on join
	Assigned  string    `json:"assigned,omitempty"`  // name after resolution
}

// Renamed reports whether the resolver changed the requested name.
func (e Entry) Renamed() bool {
	return e.Type == TypeJoin && e.Requested != e.Assigned
}

// Writer appends journal entries to a JSONL file. Each Log call writes one
// JSON line and calls file.Sync() to ensure durability.
//
// Writer is safe for concurrent use.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a journal writer at the given path. The parent directory
// must already exist. The file is created if it does not exist, or appended to
// if it does.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Log writes an entry to the journal and syncs to disk.
func (w *Writer) Log(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := w.encoder.Encode(entry); err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}

	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Close()
}

// Reader reads journal entries from a JSONL file.
type Reader struct {
	path string
}

// NewReader creates a journal reader for the given path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Entries reads all entries from the journal in order.
func (r *Reader) Entries() ([]Entry, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return entries, fmt.Errorf("decode journal line %d: %w", lineNum, err)
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read journal: %w", err)
	}

	return entries, nil
}

// ForCombat returns the entries of one combat, newest first.
func (r *Reader) ForCombat(combatID string) ([]Entry, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}

	filtered := lo.Filter(entries, func(e Entry, _ int) bool {
		return e.Combat == combatID
	})
	slices.Reverse(filtered)

	return filtered, nil
}

// Renamed returns the join entries whose assigned name differs from the
// requested one, in journal order.
func (r *Reader) Renamed() ([]Entry, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}

	return lo.Filter(entries, func(e Entry, _ int) bool {
		return e.Renamed()
	}), nil
}
