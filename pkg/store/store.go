// Package store persists combats in BadgerDB.
//
// Each combat, combatants included, is stored as one JSON value under
// "combat:{id}". Name assignment reads the sibling names and writes the new
// combatant inside the same read-write transaction, and Update calls are
// serialized, so every snapshot handed to the resolver already contains all
// earlier joins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"initiative/pkg/encounter"
)

const combatPrefix = "combat:"

// ErrCombatNotFound is returned when no combat has the requested ID.
var ErrCombatNotFound = errors.New("combat not found")

// Options configures Open.
type Options struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *slog.Logger
}

// Store is a BadgerDB-backed combat repository. It is safe for concurrent use.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	mu  sync.Mutex
}

// Open opens or creates the database. Badger holds an exclusive lock on Dir
// until Close, so a second process opening the same directory fails.
func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithLoggingLevel(badger.ERROR)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open combat store: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func combatKey(id string) []byte {
	return []byte(combatPrefix + id)
}

// CreateCombat stores a new combat. It fails if the ID is already taken.
func (s *Store) CreateCombat(c *encounter.Combat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(combatKey(c.ID))
		if err == nil {
			return fmt.Errorf("combat %s already exists", c.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return putCombat(txn, c)
	})
}

// GetCombat loads a combat by ID.
func (s *Store) GetCombat(id string) (*encounter.Combat, error) {
	var c *encounter.Combat
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = getCombat(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ListCombats returns every stored combat, oldest first.
func (s *Store) ListCombats() ([]*encounter.Combat, error) {
	var combats []*encounter.Combat
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(combatPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				var c encounter.Combat
				if err := json.Unmarshal(value, &c); err != nil {
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				combats = append(combats, &c)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(combats, func(i, j int) bool {
		if combats[i].CreatedAt.Equal(combats[j].CreatedAt) {
			return combats[i].ID < combats[j].ID
		}
		return combats[i].CreatedAt.Before(combats[j].CreatedAt)
	})

	return combats, nil
}

// DeleteCombat removes a combat and its combatants.
func (s *Store) DeleteCombat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getCombat(txn, id); err != nil {
			return err
		}
		return txn.Delete(combatKey(id))
	})
}

// Update loads the combat, applies fn and writes the result back in a single
// transaction. Update calls are serialized; if fn returns an error nothing is
// written.
func (s *Store) Update(id string, fn func(*encounter.Combat) error) (*encounter.Combat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *encounter.Combat
	err := s.db.Update(func(txn *badger.Txn) error {
		c, err := getCombat(txn, id)
		if err != nil {
			return err
		}

		if err := fn(c); err != nil {
			return err
		}

		updated = c
		return putCombat(txn, c)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("combat updated", "combat", id, "combatants", len(updated.Combatants))
	return updated, nil
}

func getCombat(txn *badger.Txn, id string) (*encounter.Combat, error) {
	item, err := txn.Get(combatKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCombatNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read combat %s: %w", id, err)
	}

	var c encounter.Combat
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &c)
	})
	if err != nil {
		return nil, fmt.Errorf("decode combat %s: %w", id, err)
	}

	return &c, nil
}

func putCombat(txn *badger.Txn, c *encounter.Combat) error {
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode combat %s: %w", c.ID, err)
	}

	return txn.Set(combatKey(c.ID), value)
}
