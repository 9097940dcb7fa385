package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/domain"
)

// RunSpecStoreContract runs a suite of tests to verify that a SpecStore
// implementation adheres to the defined interface contract.
func RunSpecStoreContract(t *testing.T, store SpecStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSpec := func() *domain.Specification {
		p, v := 0.4, 12.0
		s := domain.NewSpecification("top")
		s.Add(&domain.Node{ID: "top", Label: "Top", Kind: domain.KindOr, Children: []string{"leaf"}})
		s.Add(&domain.Node{ID: "leaf", Label: "Leaf", Kind: domain.KindLeaf, Prob: &p, Impact: &v})
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		s := newSpec()

		err := store.Save(ctx, sessionID, s)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.Root, loaded.Root)
		assert.Equal(t, s.IDs(), loaded.IDs(), "node order must survive the round trip")
		leaf, ok := loaded.Node("leaf")
		require.True(t, ok)
		require.NotNil(t, leaf.Prob)
		assert.Equal(t, 0.4, *leaf.Prob)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		s := newSpec()
		require.NoError(t, store.Save(ctx, sessionID, s))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)

		// Mutating the loaded copy must not leak back into the store.
		leaf, _ := loaded.Node("leaf")
		mutated := 0.99
		leaf.Prob = &mutated

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		leafAgain, _ := again.Node("leaf")
		require.NotNil(t, leafAgain.Prob)
		assert.Equal(t, 0.4, *leafAgain.Prob)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSpecNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSpec())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSpecNotFound, "Load after Delete should return ErrSpecNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSpec())
		_ = store.Save(ctx, id2, newSpec())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
