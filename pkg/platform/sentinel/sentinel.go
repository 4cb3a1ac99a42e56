// Package sentinel defines sentinel errors for infrastructure facts. Stores, caches,
// and sinks return these (optionally wrapped) so callers can branch with errors.Is
// without importing concrete infrastructure packages.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entry does not exist (cache miss, unknown key)
//   - ErrUnavailable: resource temporarily unavailable (connection down, breaker open)
//   - ErrInvalidState: resource in wrong state for the requested operation
//
// For input validation failures, use pkg/domain-errors directly.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
