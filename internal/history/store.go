// Package history implements the durable local scan history. History
// is best-effort by design: a failing backend must never block or fail
// the primary submission flow, so Append surfaces its error for the
// caller to log and ignore.
package history

import "github.com/neuroscan/scanclient/internal/models"

// Store defines the interface for the local scan history.
//
// Entries are append-only: nothing is deduplicated, rewritten or
// expired. Repeated fetches of the same scan id therefore produce
// duplicate entries, matching the behavior of the reference client.
type Store interface {
	// Append adds one entry to the history. The returned error is
	// informational; callers treat history as best-effort.
	Append(entry models.HistoryEntry) error

	// List returns all entries in append order. Absent, corrupt or
	// inaccessible storage reads as an empty history, never an error.
	List() ([]models.HistoryEntry, error)
}
