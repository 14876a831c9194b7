package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the right
// code and the offending values filled in.
//
// These represent factual states about stored records, not rule violations:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a uniqueness check failed during a write
// - ErrStaleVersion: optimistic concurrency check failed, caller should reload
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStaleVersion = errors.New("stale version")
	ErrUnavailable  = errors.New("unavailable")
)
