package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// stubStore answers every call from fields; block makes calls hang until
// the channel closes, ignoring the context.
type stubStore struct {
	records []types.Record
	err     error
	block   chan struct{}
	created []string
}

func (s *stubStore) wait() {
	if s.block != nil {
		<-s.block
	}
}

func (s *stubStore) ListAll(ctx context.Context) ([]types.Record, error) {
	s.wait()
	return s.records, s.err
}

func (s *stubStore) Get(ctx context.Context, id string) (types.Record, error) {
	s.wait()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return types.Record{}, types.ErrNotFound
}

func (s *stubStore) Update(ctx context.Context, id string, patch types.RecordPatch) (types.Record, error) {
	s.wait()
	return types.Record{}, s.err
}

// creatorStore adds types.Creator to stubStore.
type creatorStore struct{ stubStore }

func (s *creatorStore) Create(ctx context.Context, rec types.Record) (string, error) {
	if rec.ID == "dup" {
		return "", types.ErrConflict
	}
	s.created = append(s.created, rec.ID)
	return rec.ID, nil
}

func TestTimed_PassesThrough(t *testing.T) {
	inner := &stubStore{records: []types.Record{{ID: "1", Title: "Dune"}}}
	s := WithTimeout(inner, time.Second, nil)

	got, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	r, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", r.Title)

	_, err = s.Get(context.Background(), "2")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Same(t, types.RecordStore(inner), s.Unwrap())
}

func TestTimed_BoundsCallsThatIgnoreContext(t *testing.T) {
	inner := &stubStore{block: make(chan struct{})}
	defer close(inner.block)
	s := WithTimeout(inner, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := s.ListAll(context.Background())
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	_, err = s.Update(context.Background(), "1", types.LoanPatch("Sam"))
	assert.ErrorIs(t, err, types.ErrTimeout)
}

func TestTimed_KeepsBackendTimeout(t *testing.T) {
	inner := &stubStore{err: types.ErrTimeout}
	s := WithTimeout(inner, time.Second, nil)

	_, err := s.ListAll(context.Background())
	assert.True(t, errors.Is(err, types.ErrTimeout))
}

func TestTimed_CallerCancel(t *testing.T) {
	inner := &stubStore{block: make(chan struct{})}
	defer close(inner.block)
	s := WithTimeout(inner, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrTimeout)
}

func TestTimed_OptionalCapabilities(t *testing.T) {
	s := WithTimeout(&stubStore{}, time.Second, nil)

	_, err := s.QueryFiltered(context.Background(), types.Filters{})
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = s.Create(context.Background(), types.Record{})
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = s.Import(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NoError(t, s.Close())
}

func TestTimed_ImportThroughCreate(t *testing.T) {
	inner := &creatorStore{}
	s := WithTimeout(inner, time.Second, nil)

	n, err := s.Import(context.Background(), []types.Record{{ID: "a"}, {ID: "dup"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, inner.created)
}
