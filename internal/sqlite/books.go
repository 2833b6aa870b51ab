// This file implements the record store operations on the books table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ListAll returns every book with listing fields only, ordered by title.
func (b *Backend) ListAll(ctx context.Context) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, selectBooks(lightColumns)+" ORDER BY title COLLATE NOCASE, book_id")
	if err != nil {
		return nil, storeError("listing books", err)
	}
	records, err := scanRecords(rows, false)
	if err != nil {
		return nil, storeError("listing books", err)
	}
	return records, nil
}

// Get returns the full book. Returns types.ErrNotFound for an unknown id.
func (b *Backend) Get(ctx context.Context, id string) (types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return types.Record{}, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return types.Record{}, err
	}
	return b.getLocked(ctx, id)
}

func (b *Backend) getLocked(ctx context.Context, id string) (types.Record, error) {
	row := b.db.QueryRowContext(ctx, selectBooks(bookColumns)+" WHERE book_id = ?", id)
	r, err := scanRecord(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("getting book %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, storeError("getting book "+id, err)
	}
	return r, nil
}

// Update applies patch to the book and returns the stored result. An empty
// patch is a types.ErrValidation.
func (b *Backend) Update(ctx context.Context, id string, patch types.RecordPatch) (types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return types.Record{}, types.ErrInvalidID
	}
	if patch.Empty() {
		return types.Record{}, fmt.Errorf("updating book %s: %w: empty patch", id, types.ErrValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return types.Record{}, err
	}

	r, err := b.getLocked(ctx, id)
	if err != nil {
		return types.Record{}, err
	}
	patch.Apply(&r)
	r.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Record{}, storeError("beginning update", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE books SET
			title = ?, category = ?, box = ?, loaned_to = ?, loan_status = ?,
			author = ?, publisher = ?, year = ?, isbn = ?, notes = ?,
			cover_url = ?, summary = ?, updated_at = ?
		WHERE book_id = ?`,
		r.Title, r.Category, r.Box, r.LoanedTo, r.LoanStatus,
		r.Author, r.Publisher, r.Year, r.ISBN, r.Notes,
		r.CoverURL, r.Summary, formatTime(r.UpdatedAt), id)
	if err != nil {
		return types.Record{}, storeError("updating book "+id, err)
	}
	if err := b.persistLocked(ctx, tx); err != nil {
		return types.Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Record{}, storeError("committing update", err)
	}
	b.logger.Debug("book updated", "id", id, "status", r.LoanStatus)
	return r, nil
}

// Create stores a new book and returns its id. An empty rec.ID gets a
// UUID v7. An id already in use is a types.ErrConflict.
func (b *Backend) Create(ctx context.Context, rec types.Record) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return "", err
	}

	rec = prepareNew(rec, time.Now())
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storeError("beginning create", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM books WHERE book_id = ?", rec.ID).Scan(&exists)
	if err == nil {
		return "", fmt.Errorf("creating book %s: %w: id already exists", rec.ID, types.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", storeError("checking book "+rec.ID, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bookColumns)), ", ")
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO books (%s) VALUES (%s)", strings.Join(bookColumns, ", "), placeholders),
		recordArgs(rec)...); err != nil {
		return "", storeError("creating book "+rec.ID, err)
	}
	if err := b.persistLocked(ctx, tx); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", storeError("committing create", err)
	}
	return rec.ID, nil
}

// Import adds records in one transaction and rewrites books.jsonl once.
// Records whose id already exists are skipped. It returns the number of
// books added.
func (b *Backend) Import(ctx context.Context, records []types.Record) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	now := time.Now()
	prepared := make([]types.Record, len(records))
	for i, r := range records {
		prepared[i] = prepareNew(r, now)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError("beginning import", err)
	}
	defer tx.Rollback()

	added, err := insertRecords(tx, prepared)
	if err != nil {
		return 0, storeError("importing books", err)
	}
	if err := b.persistLocked(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError("committing import", err)
	}
	b.logger.Debug("books imported", "added", added, "skipped", len(records)-added)
	return added, nil
}

// QueryFiltered returns listing rows matching every non-empty filter. Text
// is a case-insensitive substring match on the title.
func (b *Backend) QueryFiltered(ctx context.Context, f types.Filters) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if f.Box != "" {
		conditions = append(conditions, "box = ?")
		args = append(args, f.Box)
	}
	if f.Status != "" {
		conditions = append(conditions, "loan_status = ?")
		args = append(args, f.Status)
	}
	if f.Text != "" {
		conditions = append(conditions, "title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Text)+"%")
	}

	query := selectBooks(lightColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY title COLLATE NOCASE, book_id"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("querying books", err)
	}
	records, err := scanRecords(rows, false)
	if err != nil {
		return nil, storeError("querying books", err)
	}
	return records, nil
}

// prepareNew assigns an id and timestamps and normalizes the loan fields.
func prepareNew(r types.Record, now time.Time) types.Record {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = newID()
	}
	now = now.UTC().Truncate(time.Second)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	r.Normalize()
	return r
}

func selectBooks(columns []string) string {
	return "SELECT " + strings.Join(columns, ", ") + " FROM books"
}

func scanRecords(rows *sql.Rows, full bool) ([]types.Record, error) {
	defer rows.Close()
	records := make([]types.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows.Scan, full)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(scan func(dest ...any) error, full bool) (types.Record, error) {
	var r types.Record
	dest := []any{&r.ID, &r.Title, &r.Category, &r.Box, &r.LoanedTo, &r.LoanStatus}
	var createdAt, updatedAt string
	if full {
		dest = append(dest, &r.Author, &r.Publisher, &r.Year, &r.ISBN, &r.Notes,
			&r.CoverURL, &r.Summary, &createdAt, &updatedAt)
	}
	if err := scan(dest...); err != nil {
		return types.Record{}, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	r.Normalize()
	return r, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
