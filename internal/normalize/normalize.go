// Package normalize converts the loosely-typed payload returned by the
// inference service into the canonical ScanResult shape. This is the
// single point where "what the server actually sent" becomes "what the
// rest of the system may assume": downstream consumers rely on the
// post-normalization invariants and do no further defensive checks.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scanerr"
)

// Normalizer reshapes raw scan-result payloads. origin is the service
// base URL used to absolutize root-relative image paths.
type Normalizer struct {
	origin string
}

// New creates a Normalizer for the given service origin. A trailing
// slash on the origin is dropped so joining with a root-relative path
// never doubles the separator.
func New(origin string) *Normalizer {
	return &Normalizer{origin: strings.TrimSuffix(origin, "/")}
}

// rawResult mirrors the wire shape with the fields the server is known
// to send loosely typed.
type rawResult struct {
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	ImageURL    string              `json:"imageUrl"`
	Prediction  *rawPrediction      `json:"prediction"`
	PatientInfo *models.PatientInfo `json:"patientInfo"`
}

type rawPrediction struct {
	Classification string             `json:"classification"`
	Confidence     json.RawMessage    `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// Normalize decodes and reshapes a raw result payload. Any missing
// required field, and any confidence value that is neither a number
// nor a parseable decimal string, is a MALFORMED_RESPONSE. The
// function is idempotent: normalizing an already-normalized result
// yields the same value.
func (n *Normalizer) Normalize(raw []byte) (*models.ScanResult, error) {
	var r rawResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, scanerr.NewMalformedResponse("scan result is not valid JSON", err)
	}

	switch {
	case r.ID == "":
		return nil, scanerr.NewMalformedResponse("scan result missing id", nil)
	case r.Timestamp == "":
		return nil, scanerr.NewMalformedResponse("scan result missing timestamp", nil)
	case r.ImageURL == "":
		return nil, scanerr.NewMalformedResponse("scan result missing imageUrl", nil)
	case r.Prediction == nil:
		return nil, scanerr.NewMalformedResponse("scan result missing prediction", nil)
	case r.Prediction.Classification == "":
		return nil, scanerr.NewMalformedResponse("prediction missing classification", nil)
	case len(r.Prediction.Confidence) == 0:
		return nil, scanerr.NewMalformedResponse("prediction missing confidence", nil)
	case r.Prediction.Probabilities == nil:
		return nil, scanerr.NewMalformedResponse("prediction missing probabilities", nil)
	}

	confidence, err := parseConfidence(r.Prediction.Confidence)
	if err != nil {
		return nil, err
	}

	return &models.ScanResult{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		ImageURL:  n.absolutize(r.ImageURL),
		Prediction: models.Prediction{
			Classification: r.Prediction.Classification,
			Confidence:     confidence,
			Probabilities:  r.Prediction.Probabilities,
		},
		PatientInfo: r.PatientInfo,
	}, nil
}

// parseConfidence accepts a JSON number or its decimal-string
// encoding. A string that does not parse is an error, not a silent
// zero.
func parseConfidence(raw json.RawMessage) (float64, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, scanerr.NewMalformedResponse("confidence is neither number nor string", err)
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, scanerr.NewMalformedResponse("confidence string is not a decimal number", err)
	}
	return num, nil
}

// absolutize rewrites root-relative image paths against the service
// origin. Absolute URLs and data URIs pass through unchanged.
func (n *Normalizer) absolutize(imageURL string) string {
	if strings.HasPrefix(imageURL, "/") {
		return n.origin + imageURL
	}
	return imageURL
}
