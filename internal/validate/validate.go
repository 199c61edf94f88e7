// Package validate implements the pre-upload validation gate. It is
// pure and synchronous: no network or storage access happens here.
package validate

import (
	"strings"

	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scanerr"
)

// MaxScanSize is the upload size cap in bytes.
const MaxScanSize = 10 * 1024 * 1024 // 10 MiB

// Submission checks a scan submission before any network activity.
// It returns nil when the file is admissible, or a scanerr.Error with
// kind INVALID_TYPE or TOO_LARGE.
func Submission(sub models.ScanSubmission) error {
	return File(sub.MIMEType, sub.SizeBytes)
}

// File checks a file's MIME type and size against the upload rules.
func File(mimeType string, sizeBytes int64) error {
	if !strings.HasPrefix(mimeType, "image/") {
		return scanerr.NewInvalidType(mimeType)
	}
	if sizeBytes > MaxScanSize {
		return scanerr.NewTooLarge(sizeBytes, MaxScanSize)
	}
	return nil
}

// FirstSubmission admits exactly one file from a multi-file pick.
// Extra files are ignored, not an error; the caller may log how many
// were dropped.
func FirstSubmission(subs []models.ScanSubmission) (models.ScanSubmission, int) {
	if len(subs) == 0 {
		return models.ScanSubmission{}, 0
	}
	return subs[0], len(subs) - 1
}
