// Package models contains domain types for the NeuroScan client.
package models

import "io"

// Known classification labels assigned by the inference service.
// The label set is open: unrecognized labels pass through unchanged.
const (
	ClassGlioma     = "glioma"
	ClassMeningioma = "meningioma"
	ClassPituitary  = "pituitary"
	ClassNoTumor    = "no_tumor"
)

// PatientInfo is optional free-form metadata attached to a submission.
// It has no identity of its own and travels embedded in a submission
// or a result.
type PatientInfo struct {
	ID     string `json:"id,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"` // "male", "female" or "other"
	Notes  string `json:"notes,omitempty"`
}

// ScanSubmission is the ephemeral client-side record of a file picked
// for upload. It is owned by the submission controller until
// transmitted and discarded afterwards.
type ScanSubmission struct {
	File      io.Reader
	Filename  string
	MIMEType  string
	SizeBytes int64
	Patient   *PatientInfo
}

// Prediction is the model output for a single scan.
type Prediction struct {
	Classification string             `json:"classification"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// ScanResult is the canonical server-confirmed record for a scan.
// After normalization ImageURL is always absolute and Confidence is
// always a float, regardless of how the server encoded them.
type ScanResult struct {
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"` // ISO-8601, as sent by the server
	ImageURL    string       `json:"imageUrl"`
	Prediction  Prediction   `json:"prediction"`
	PatientInfo *PatientInfo `json:"patientInfo,omitempty"`
}

// HistoryEntry is the durable, denormalized projection of a ScanResult
// kept in local history. Entries are append-only and never rewritten.
type HistoryEntry struct {
	ID             string  `json:"id"`
	Timestamp      string  `json:"timestamp"`
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
}

// Classification describes one diagnostic category served by
// GET /classifications/.
type Classification struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
