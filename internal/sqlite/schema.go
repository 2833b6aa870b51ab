// This file holds the DDL for the books query database.
package sqlite

// Schema DDL. The database is rebuilt from books.jsonl on every Attach, so
// there are no migrations.
const (
	createBooks = `CREATE TABLE books (
    book_id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    box TEXT NOT NULL DEFAULT '',
    loaned_to TEXT NOT NULL DEFAULT '',
    loan_status TEXT NOT NULL DEFAULT 'available',
    author TEXT NOT NULL DEFAULT '',
    publisher TEXT NOT NULL DEFAULT '',
    year TEXT NOT NULL DEFAULT '',
    isbn TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    cover_url TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxBooksTitle    = `CREATE INDEX idx_books_title ON books(title COLLATE NOCASE);`
	idxBooksCategory = `CREATE INDEX idx_books_category ON books(category);`
	idxBooksBox      = `CREATE INDEX idx_books_box ON books(box);`
	idxBooksStatus   = `CREATE INDEX idx_books_status ON books(loan_status);`
)

// schemaDDL lists the CREATE TABLE and CREATE INDEX statements in order.
var schemaDDL = []string{
	createBooks,
	idxBooksTitle,
	idxBooksCategory,
	idxBooksBox,
	idxBooksStatus,
}

// bookColumns is the column order used by every SELECT and INSERT.
var bookColumns = []string{
	"book_id", "title", "category", "box", "loaned_to", "loan_status",
	"author", "publisher", "year", "isbn", "notes", "cover_url", "summary",
	"created_at", "updated_at",
}

// lightColumns are the columns of a listing row.
var lightColumns = []string{
	"book_id", "title", "category", "box", "loaned_to", "loan_status",
}
