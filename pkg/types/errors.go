package types

import (
	"errors"
	"fmt"
)

// Catalog errors. Backends and the engine wrap these with %w; callers test
// with errors.Is.
var (
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrNotFound         = errors.New("record not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("record state conflict")
	ErrTimeout          = errors.New("record store timed out")
)

// Session errors.
var (
	ErrBusy       = errors.New("another operation is in progress")
	ErrSuperseded = errors.New("result superseded by a newer request")
	ErrNoNeighbor = fmt.Errorf("%w: no adjacent record", ErrValidation)
	ErrInvalidID  = fmt.Errorf("%w: invalid record ID", ErrValidation)
)

// IsRetryable reports whether a fresh user action could succeed where err
// failed: the store was unreachable or too slow.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}
