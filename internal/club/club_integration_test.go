package club_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/club"
	"github.com/adroit-club/assistant/internal/testutil"
)

func TestStore_Members(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := tdb.Pool.Exec(ctx, `
		INSERT INTO members (id, name, approved, gemini_api_key) VALUES
			('alice', 'Alice', TRUE, 'alice-key'),
			('bob', 'Bob', FALSE, '')`)
	require.NoError(t, err)

	store := club.NewStoreFromPool(tdb.Pool, testutil.DiscardLogger())

	t.Run("member lookup", func(t *testing.T) {
		m, err := store.Member(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", m.Name)
		assert.True(t, m.Approved)
		assert.Equal(t, "alice-key", m.GeminiAPIKey)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := store.Member(ctx, "nobody")
		assert.ErrorIs(t, err, club.ErrMemberNotFound)
	})

	t.Run("approved", func(t *testing.T) {
		approved, err := store.Approved(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, approved)

		approved, err = store.Approved(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, approved)

		approved, err = store.Approved(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, approved)
	})

	t.Run("credential", func(t *testing.T) {
		key, err := store.Credential(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice-key", key)

		key, err = store.Credential(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, key)

		key, err = store.Credential(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, key)
	})
}

func TestStore_Resources(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := tdb.Pool.Exec(ctx, `
		INSERT INTO resources (id, title, type, domain, difficulty, url, tags, description) VALUES
			('r2', 'Zebra Patterns', 'article', 'design', 'easy', 'https://example.com/z', '{design}', 'About stripes.'),
			('r1', 'Alpha Guide', 'book', 'backend', 'hard', 'https://example.com/a', '{go,api}', 'Deep dive.')`)
	require.NoError(t, err)

	store := club.NewStoreFromPool(tdb.Pool, testutil.DiscardLogger())

	resources, err := store.Resources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	// Ordered by title.
	assert.Equal(t, "Alpha Guide", resources[0].Title)
	assert.Equal(t, []string{"go", "api"}, resources[0].Tags)
	assert.Equal(t, "Zebra Patterns", resources[1].Title)
}
