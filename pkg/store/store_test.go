package store_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"initiative/internal/testutil"
	"initiative/pkg/encounter"
	"initiative/pkg/naming"
	"initiative/pkg/store"
)

func createCombat(t *testing.T, s *store.Store, name string) *encounter.Combat {
	t.Helper()

	c, err := encounter.NewCombat(name)
	require.NoError(t, err)
	require.NoError(t, s.CreateCombat(c))

	return c
}

func TestStore_CreateAndGetCombat(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")

	loaded, err := s.GetCombat(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, loaded.ID)
	assert.Equal(t, "Crypt", loaded.Name)
	assert.Equal(t, 1, loaded.Round)
	assert.True(t, c.CreatedAt.Equal(loaded.CreatedAt))
}

func TestStore_CreateCombat_DuplicateID(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")

	require.Error(t, s.CreateCombat(c))
}

func TestStore_GetCombat_NotFound(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)

	_, err := s.GetCombat("missing")
	require.ErrorIs(t, err, store.ErrCombatNotFound)
}

func TestStore_ListCombats(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	first := createCombat(t, s, "Crypt")
	second := createCombat(t, s, "Bridge")

	combats, err := s.ListCombats()
	require.NoError(t, err)
	require.Len(t, combats, 2)

	ids := []string{combats[0].ID, combats[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	assert.False(t, combats[1].CreatedAt.Before(combats[0].CreatedAt))
}

func TestStore_DeleteCombat(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")

	require.NoError(t, s.DeleteCombat(c.ID))

	_, err := s.GetCombat(c.ID)
	require.ErrorIs(t, err, store.ErrCombatNotFound)
	require.ErrorIs(t, s.DeleteCombat(c.ID), store.ErrCombatNotFound)
}

func TestStore_Update_PersistsJoin(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")
	resolver := naming.New(naming.OrderingNumeric)

	for range 3 {
		_, err := s.Update(c.ID, func(combat *encounter.Combat) error {
			_, err := combat.Join(encounter.JoinRequest{Name: "Skeleton"}, resolver)
			return err
		})
		require.NoError(t, err)
	}

	loaded, err := s.GetCombat(c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Skeleton", "Skeleton 1", "Skeleton 2"}, loaded.Names())
}

func TestStore_Update_ErrorWritesNothing(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")
	boom := errors.New("boom")

	_, err := s.Update(c.ID, func(combat *encounter.Combat) error {
		_, joinErr := combat.Join(encounter.JoinRequest{Name: "Skeleton"}, naming.New(naming.OrderingNumeric))
		require.NoError(t, joinErr)
		return boom
	})
	require.ErrorIs(t, err, boom)

	loaded, err := s.GetCombat(c.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Combatants)
}

func TestStore_Update_NotFound(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)

	_, err := s.Update("missing", func(*encounter.Combat) error { return nil })
	require.ErrorIs(t, err, store.ErrCombatNotFound)
}

func TestStore_Update_ConcurrentJoinsGetDistinctNames(t *testing.T) {
	t.Parallel()

	s := testutil.OpenMemoryStore(t)
	c := createCombat(t, s, "Crypt")
	resolver := naming.New(naming.OrderingNumeric)

	const joins = 25
	var wg sync.WaitGroup
	errs := make(chan error, joins)

	for range joins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(c.ID, func(combat *encounter.Combat) error {
				_, err := combat.Join(encounter.JoinRequest{Name: "Zombie"}, resolver)
				return err
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	loaded, err := s.GetCombat(c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Combatants, joins)

	seen := make(map[string]struct{}, joins)
	for _, name := range loaded.Names() {
		_, dup := seen[name]
		require.False(t, dup, "duplicate name %q", name)
		seen[name] = struct{}{}
	}
	assert.Contains(t, seen, "Zombie")
	assert.Contains(t, seen, "Zombie 24")
}
