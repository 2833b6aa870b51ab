package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memFavorites{ids: []string{"b"}}
	f, err := LoadFavorites(ctx, store)
	require.NoError(t, err)
	before := f.IDs()

	on, err := f.Toggle(ctx, "a")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []string{"a", "b"}, store.ids)

	on, err = f.Toggle(ctx, "a")
	require.NoError(t, err)
	assert.False(t, on)

	assert.Equal(t, before, f.IDs())
	assert.Equal(t, []string{"b"}, store.ids)
	assert.Equal(t, 2, store.saves)
}

func TestFavorites_SaveFailureKeepsSet(t *testing.T) {
	ctx := context.Background()
	store := &memFavorites{saveErr: errors.New("disk full")}
	f, err := LoadFavorites(ctx, store)
	require.NoError(t, err)

	on, err := f.Toggle(ctx, "a")
	assert.Error(t, err)
	assert.False(t, on)
	assert.False(t, f.Contains("a"))
	assert.Zero(t, f.Len())
}

func TestFavorites_NilAndMemory(t *testing.T) {
	var f *Favorites
	assert.False(t, f.Contains("a"))
	assert.Empty(t, f.IDs())
	assert.Zero(t, f.Len())

	mem := NewFavorites("x", "", "y")
	assert.Equal(t, []string{"x", "y"}, mem.IDs())
	on, err := mem.Toggle(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, on)
}
