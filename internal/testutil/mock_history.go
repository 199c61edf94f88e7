// mock_history.go - History store fakes for testing
package testutil

import (
	"sync"

	"github.com/neuroscan/scanclient/internal/models"
)

// MemHistory implements history.Store in memory.
type MemHistory struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
}

// NewMemHistory creates an empty in-memory history.
func NewMemHistory() *MemHistory {
	return &MemHistory{}
}

func (m *MemHistory) Append(entry models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemHistory) List() ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// FailingHistory implements history.Store with appends that always
// fail, for asserting the fail-open behavior of the pipeline. Lists
// still succeed and return whatever was appended before the store
// started failing (always nothing here).
type FailingHistory struct {
	Err error
}

func (f *FailingHistory) Append(models.HistoryEntry) error {
	return f.Err
}

func (f *FailingHistory) List() ([]models.HistoryEntry, error) {
	return nil, nil
}
