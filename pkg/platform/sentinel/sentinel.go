package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: entity is in the wrong state for the requested change
//   - ErrUnavailable: backing service cannot be reached
//   - ErrLeaseHeld: another worker holds the lease being acquired
//
// Validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrLeaseHeld    = errors.New("lease held")
)
