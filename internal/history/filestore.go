package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/neuroscan/scanclient/internal/models"
)

// FileStore keeps the history as a single JSON-encoded list in one
// file, mirroring the single-key layout of the reference client's
// browser storage. Each append reads, extends and rewrites the whole
// list; there is no native append primitive.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore persisting to path. The parent
// directory is created if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Append adds one entry with read-modify-write semantics. Unreadable
// or corrupt existing content is treated as an empty history rather
// than an error, so a damaged file heals on the next append.
func (s *FileStore) Append(entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readAll()
	entries = append(entries, entry)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// List returns the stored entries in append order. A missing or
// corrupt file reads as empty.
func (s *FileStore) List() ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(), nil
}

func (s *FileStore) readAll() []models.HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}
