package mockapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/neuroscan/scanclient/internal/models"
)

// ScanStore persists uploaded scan images and their results on the
// local filesystem, one image and one result JSON per scan id. The
// layout matches the reference service: <id>.jpg next to
// <id>_result.json in the uploads directory.
type ScanStore struct {
	mu        sync.RWMutex
	uploadDir string
}

// NewScanStore creates a ScanStore rooted at uploadDir.
func NewScanStore(uploadDir string) (*ScanStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &ScanStore{uploadDir: uploadDir}, nil
}

// SaveImage stores the raw image bytes for a scan id and returns the
// path the image is served from.
func (s *ScanStore) SaveImage(scanID string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.uploadDir, scanID+".jpg")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing scan image: %w", err)
	}
	return path, nil
}

// SaveResult stores the result document for a scan id.
func (s *ScanStore) SaveResult(result *models.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding scan result: %w", err)
	}

	path := filepath.Join(s.uploadDir, result.ID+"_result.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing scan result: %w", err)
	}
	return nil
}

// GetResult loads the stored result for a scan id.
func (s *ScanStore) GetResult(scanID string) (*models.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.uploadDir, scanID+"_result.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan result not found: %s", scanID)
	}

	var result models.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding scan result: %w", err)
	}
	return &result, nil
}

// UploadDir returns the directory scan images are stored in.
func (s *ScanStore) UploadDir() string {
	return s.uploadDir
}
