package types

import "context"

// RecordStore is the contract every catalog backend implements.
type RecordStore interface {
	// ListAll returns every record with lightweight fields only, sorted by
	// title. Returns ErrStoreUnavailable when the backend cannot be reached.
	ListAll(ctx context.Context) ([]Record, error)

	// Get returns the full record. Returns ErrNotFound if id does not exist.
	Get(ctx context.Context, id string) (Record, error)

	// Update applies patch and returns the post-update record.
	// Returns ErrNotFound or ErrValidation.
	Update(ctx context.Context, id string, patch RecordPatch) (Record, error)
}

// FilteredQuerier is implemented by backends that can filter server-side.
// Nothing in the engine depends on it.
type FilteredQuerier interface {
	QueryFiltered(ctx context.Context, filters Filters) ([]Record, error)
}

// Creator is implemented by backends that accept new records.
type Creator interface {
	// Create stores a new record and returns its ID. When rec.ID is empty a
	// new ID is generated.
	Create(ctx context.Context, rec Record) (string, error)
}

// Closer is implemented by backends holding resources.
type Closer interface {
	Close() error
}
