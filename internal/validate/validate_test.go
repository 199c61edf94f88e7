package validate

import (
	"testing"

	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scanerr"
)

func TestFile(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		size     int64
		wantKind scanerr.Kind
	}{
		{
			name:     "valid jpeg",
			mimeType: "image/jpeg",
			size:     2 * 1024 * 1024,
			wantKind: "",
		},
		{
			name:     "valid png at exact limit",
			mimeType: "image/png",
			size:     MaxScanSize,
			wantKind: "",
		},
		{
			name:     "pdf rejected",
			mimeType: "application/pdf",
			size:     1024,
			wantKind: scanerr.KindInvalidType,
		},
		{
			name:     "empty mime type rejected",
			mimeType: "",
			size:     1024,
			wantKind: scanerr.KindInvalidType,
		},
		{
			name:     "oversized image rejected",
			mimeType: "image/png",
			size:     15 * 1024 * 1024,
			wantKind: scanerr.KindTooLarge,
		},
		{
			name:     "one byte over the limit",
			mimeType: "image/jpeg",
			size:     MaxScanSize + 1,
			wantKind: scanerr.KindTooLarge,
		},
		{
			name:     "type check runs before size check",
			mimeType: "video/mp4",
			size:     20 * 1024 * 1024,
			wantKind: scanerr.KindInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := File(tt.mimeType, tt.size)

			if tt.wantKind == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error, got nil", tt.wantKind)
			}
			if got := scanerr.KindOf(err); got != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, got)
			}
		})
	}
}

func TestFirstSubmission(t *testing.T) {
	subs := []models.ScanSubmission{
		{Filename: "a.png"},
		{Filename: "b.png"},
		{Filename: "c.png"},
	}

	first, dropped := FirstSubmission(subs)
	if first.Filename != "a.png" {
		t.Errorf("expected first file, got %s", first.Filename)
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped files, got %d", dropped)
	}

	_, dropped = FirstSubmission(nil)
	if dropped != 0 {
		t.Errorf("expected 0 dropped files for empty pick, got %d", dropped)
	}
}
