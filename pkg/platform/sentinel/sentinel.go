package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the connection manager
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrNotFound: document does not exist in the collection
//   - ErrUnavailable: the backing store is not connected
//   - ErrInvalidFilter: a filter or update cannot be expressed by the store
//
// For validation errors (bad input, missing keys), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("unavailable")
	ErrInvalidFilter = errors.New("invalid filter")
)
