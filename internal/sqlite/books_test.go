// Tests for the record store operations of the SQLite backend.
package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func seedBooks(t *testing.T, b *Backend) {
	t.Helper()
	n, err := b.Import(context.Background(), []types.Record{
		{ID: "1", Title: "dune", Category: "SF", Box: "3", Author: "Frank Herbert", ISBN: "978-0441013593"},
		{ID: "2", Title: "Dune Messiah", Category: "SF", Box: "1", LoanedTo: "Sam"},
		{ID: "3", Title: "Cien años de soledad", Category: "Novela", Box: "10"},
		{ID: "4", Title: "100% Cotton", Category: "Craft", Box: "2"},
	})
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestBooks_ListAll(t *testing.T) {
	b := attach(t, t.TempDir())
	seedBooks(t, b)

	got, err := b.ListAll(context.Background())
	require.NoError(t, err)

	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
		assert.Empty(t, r.Author, "listing rows are lightweight")
	}
	assert.Equal(t, []string{"100% Cotton", "Cien años de soledad", "dune", "Dune Messiah"}, titles)
	assert.Equal(t, "loaned to Sam", got[3].LoanStatus)
	assert.Equal(t, types.StatusAvailable, got[2].LoanStatus)
}

func TestBooks_Get(t *testing.T) {
	b := attach(t, t.TempDir())
	seedBooks(t, b)
	ctx := context.Background()

	r, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", r.Author)
	assert.Equal(t, "978-0441013593", r.ISBN)
	assert.False(t, r.CreatedAt.IsZero())

	_, err = b.Get(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestBooks_Update(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir)
	seedBooks(t, b)
	ctx := context.Background()

	r, err := b.Update(ctx, "1", types.LoanPatch("Ana"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", r.LoanedTo)
	assert.Equal(t, "loaned to Ana", r.LoanStatus)
	assert.Equal(t, "Frank Herbert", r.Author, "extended fields survive")

	r, err = b.Update(ctx, "1", types.ReturnPatch())
	require.NoError(t, err)
	assert.True(t, r.Available())

	_, err = b.Update(ctx, "missing", types.ReturnPatch())
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.Update(ctx, "1", types.RecordPatch{})
	assert.ErrorIs(t, err, types.ErrValidation)

	data, err := os.ReadFile(filepath.Join(dir, booksJSONL))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"loan_status":"available"`)
}

func TestBooks_Create(t *testing.T) {
	b := attach(t, t.TempDir())
	ctx := context.Background()

	id, err := b.Create(ctx, types.Record{Title: "Hyperion", LoanedTo: "Lee"})
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	r, err := b.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "loaned to Lee", r.LoanStatus)

	_, err = b.Create(ctx, types.Record{ID: id, Title: "Other"})
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestBooks_ImportSkipsExisting(t *testing.T) {
	b := attach(t, t.TempDir())
	seedBooks(t, b)

	n, err := b.Import(context.Background(), []types.Record{
		{ID: "1", Title: "duplicate"},
		{Title: "Solaris"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := b.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "dune", r.Title)
}

// blockJSONL replaces books.jsonl with a non-empty directory so the atomic
// rename fails.
func blockJSONL(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, booksJSONL)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "keep"), 0o755))
}

func TestBooks_FailedPersistLeavesNoChange(t *testing.T) {
	ctx := context.Background()

	t.Run("update", func(t *testing.T) {
		dir := t.TempDir()
		b := attach(t, dir)
		seedBooks(t, b)
		blockJSONL(t, dir)

		_, err := b.Update(ctx, "1", types.LoanPatch("Ana"))
		require.ErrorIs(t, err, types.ErrStoreUnavailable)

		r, err := b.Get(ctx, "1")
		require.NoError(t, err)
		assert.True(t, r.Available())
		assert.Empty(t, r.LoanedTo)
	})

	t.Run("create", func(t *testing.T) {
		dir := t.TempDir()
		b := attach(t, dir)
		seedBooks(t, b)
		blockJSONL(t, dir)

		_, err := b.Create(ctx, types.Record{ID: "5", Title: "Hyperion"})
		require.ErrorIs(t, err, types.ErrStoreUnavailable)

		_, err = b.Get(ctx, "5")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("import", func(t *testing.T) {
		dir := t.TempDir()
		b := attach(t, dir)
		seedBooks(t, b)
		blockJSONL(t, dir)

		n, err := b.Import(ctx, []types.Record{{ID: "5", Title: "Hyperion"}})
		require.ErrorIs(t, err, types.ErrStoreUnavailable)
		assert.Zero(t, n)

		all, err := b.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}

func TestBooks_QueryFiltered(t *testing.T) {
	b := attach(t, t.TempDir())
	seedBooks(t, b)

	tests := []struct {
		name    string
		filters types.Filters
		want    []string
	}{
		{"no filters", types.Filters{}, []string{"4", "3", "1", "2"}},
		{"category", types.Filters{Category: "SF"}, []string{"1", "2"}},
		{"category and box", types.Filters{Category: "SF", Box: "1"}, []string{"2"}},
		{"status", types.Filters{Status: types.StatusAvailable}, []string{"4", "3", "1"}},
		{"text is case-insensitive", types.Filters{Text: "DUNE"}, []string{"1", "2"}},
		{"text escapes wildcards", types.Filters{Text: "100%"}, []string{"4"}},
		{"no match", types.Filters{Category: "Poesía"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.QueryFiltered(context.Background(), tt.filters)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBooks_ContextCanceled(t *testing.T) {
	b := attach(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ListAll(ctx)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
	assert.True(t, types.IsRetryable(err))
}

func TestBackend_ImplementsContracts(t *testing.T) {
	var b any = NewBackend(nil)
	_, ok := b.(types.RecordStore)
	assert.True(t, ok)
	_, ok = b.(types.FilteredQuerier)
	assert.True(t, ok)
	_, ok = b.(types.Creator)
	assert.True(t, ok)
	_, ok = b.(types.Closer)
	assert.True(t, ok)
}
