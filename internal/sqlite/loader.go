// This file loads books.jsonl into the query database at Attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// loadJSONL reads the catalog file and inserts every record in one
// transaction: either all rows load or the database stays empty. A record
// whose id repeats an earlier line is skipped.
func loadJSONL(db *sql.DB, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := insertRecords(tx, records)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return n, nil
}

// insertRecords inserts records with INSERT OR IGNORE and returns how many
// rows were added.
func insertRecords(tx *sql.Tx, records []types.Record) (int, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bookColumns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT OR IGNORE INTO books (%s) VALUES (%s)",
		strings.Join(bookColumns, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, r := range records {
		res, err := stmt.Exec(recordArgs(r)...)
		if err != nil {
			return added, fmt.Errorf("inserting book %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// recordArgs returns r's values in bookColumns order.
func recordArgs(r types.Record) []any {
	return []any{
		r.ID, r.Title, r.Category, r.Box, r.LoanedTo, r.LoanStatus,
		r.Author, r.Publisher, r.Year, r.ISBN, r.Notes, r.CoverURL, r.Summary,
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
