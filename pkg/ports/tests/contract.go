package tests

import (
	"context"
	"testing"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SessionStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.SessionStore.
func SessionStoreContractTest(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		s := domain.NewSession("contract-1", domain.Position{KnotID: "intro", NodeID: "start"})
		s.Advance(domain.Position{KnotID: "intro", NodeID: "hall"}, false)

		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "contract-1")
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, s.Position, loaded.Position)
		assert.Equal(t, s.History, loaded.History)
		assert.False(t, loaded.Ended)
	})

	t.Run("LoadIsolation", func(t *testing.T) {
		s := domain.NewSession("contract-2", domain.Position{KnotID: "intro", NodeID: "start"})
		require.NoError(t, store.Save(ctx, s))

		// Mutating the saved value must not leak into the store.
		s.Advance(domain.Position{KnotID: "intro", NodeID: "elsewhere"}, true)

		loaded, err := store.Load(ctx, "contract-2")
		require.NoError(t, err)
		assert.Equal(t, "start", loaded.Position.NodeID)
		assert.Len(t, loaded.History, 1)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := domain.NewSession("contract-3", domain.Position{KnotID: "intro", NodeID: "start"})
		require.NoError(t, store.Save(ctx, s))
		s.Advance(domain.Position{KnotID: "finale", NodeID: "end"}, true)
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "contract-3")
		require.NoError(t, err)
		assert.Equal(t, domain.Position{KnotID: "finale", NodeID: "end"}, loaded.Position)
		assert.True(t, loaded.Ended)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "contract-1")
		assert.Contains(t, ids, "contract-2")
		assert.NotContains(t, ids, "contract-missing")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "contract-1"))

		_, err := store.Load(ctx, "contract-1")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, "contract-1")

		// Idempotent
		assert.NoError(t, store.Delete(ctx, "contract-1"))
	})
}
