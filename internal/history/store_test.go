package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, Entry{
		OriginalPrompt: "write a poem",
		EnhancedPrompt: "As a poet, write a sonnet",
		Category:       "Creative Content",
		Model:          "GPT-4o",
		Changes:        []string{"Added a persona", "Specified form"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.False(t, added.Timestamp.IsZero())

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(added, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddKeepsNilChangesEmpty(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, Entry{OriginalPrompt: "a", EnhancedPrompt: "b"})
	require.NoError(t, err)

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Changes)
	assert.Empty(t, got.Changes)
}

func TestListNewestFirstAndCapped(t *testing.T) {
	s := openStore(t, WithLimit(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Add(ctx, Entry{OriginalPrompt: fmt.Sprintf("p%d", i), EnhancedPrompt: "e"})
		require.NoError(t, err)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var got []string
	for _, e := range entries {
		got = append(got, e.OriginalPrompt)
	}
	assert.Equal(t, []string{"p4", "p3", "p2"}, got)
}

func TestDefaultLimit(t *testing.T) {
	s := openStore(t, WithLimit(0))
	assert.Equal(t, DefaultLimit, s.Limit())

	ctx := context.Background()
	for i := 0; i < DefaultLimit+5; i++ {
		_, err := s.Add(ctx, Entry{OriginalPrompt: "p", EnhancedPrompt: "e"})
		require.NoError(t, err)
	}
	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLimit)
}

func TestDeleteAndClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, Entry{OriginalPrompt: "a", EnhancedPrompt: "A"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Entry{OriginalPrompt: "b", EnhancedPrompt: "B"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	added, err := s.Add(ctx, Entry{OriginalPrompt: "keep me", EnhancedPrompt: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.OriginalPrompt)
}
