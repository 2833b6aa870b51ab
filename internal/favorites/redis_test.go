package favorites

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/catalog"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	s, err := NewRedisStore("redis://"+m.Addr(), "", nil)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, m
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, m := setupTestRedis(t)
	ctx := context.Background()

	ids, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.Save(ctx, []string{"a", "b"}))
	got, err := m.Get(types.DefaultFavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, got)
	assert.Zero(t, m.TTL(types.DefaultFavoritesKey))

	ids, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestRedisStore_DamagedValue(t *testing.T) {
	s, m := setupTestRedis(t)
	require.NoError(t, m.Set(types.DefaultFavoritesKey, "not json"))

	ids, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Unreachable(t *testing.T) {
	m := miniredis.RunT(t)
	addr := m.Addr()
	m.Close()

	_, err := NewRedisStore("redis://"+addr, "", nil)
	assert.Error(t, err)

	_, err = NewRedisStore("://bad", "", nil)
	assert.Error(t, err)
}

func TestRedisStore_LoadFailure(t *testing.T) {
	s, m := setupTestRedis(t)
	m.SetError("LOADING")

	_, err := s.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.Save(context.Background(), []string{"x"}))
}

func TestRedisStore_FavoritesToggle(t *testing.T) {
	s, m := setupTestRedis(t)
	ctx := context.Background()

	favs, err := catalog.LoadFavorites(ctx, s)
	require.NoError(t, err)
	_, err = favs.Toggle(ctx, "akira")
	require.NoError(t, err)

	got, err := m.Get(types.DefaultFavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, `["akira"]`, got)

	m.SetError("READONLY")
	_, err = favs.Toggle(ctx, "dune")
	assert.Error(t, err)
	assert.False(t, favs.Contains("dune"), "failed save leaves the set unchanged")
}
