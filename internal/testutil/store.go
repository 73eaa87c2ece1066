package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"initiative/pkg/store"
)

// OpenMemoryStore opens an in-memory combat store closed at test cleanup.
func OpenMemoryStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Options{InMemory: true})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}
