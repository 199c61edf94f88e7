// Package scan orchestrates the submission pipeline: validation,
// upload, result retrieval, normalization and the best-effort history
// append, exposed to the caller as a single ordered stream of state
// transitions.
package scan

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/neuroscan/scanclient/internal/history"
	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/normalize"
	"github.com/neuroscan/scanclient/internal/transfer"
	"github.com/neuroscan/scanclient/internal/validate"
)

// State is a phase of one submission instance.
type State string

const (
	StateIdle           State = "idle"
	StateValidating     State = "validating"
	StateUploading      State = "uploading"
	StateAwaitingResult State = "awaiting_result"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
)

// FailureClass scopes a failure to the pipeline step it occurred in.
type FailureClass string

const (
	FailureValidation FailureClass = "validation"
	FailureTransfer   FailureClass = "transfer"
	FailureRetrieval  FailureClass = "retrieval"
)

// Failure describes a terminal pipeline failure. Err is always a
// *scanerr.Error carrying the fine-grained kind and, for server
// errors, the server-provided message for direct user display.
type Failure struct {
	Class FailureClass
	Err   error
}

// Transition is one observed state change. ScanID is set from
// AwaitingResult on, Result only on Succeeded, Failure only on Failed.
type Transition struct {
	State   State
	ScanID  string
	Result  *models.ScanResult
	Failure *Failure
}

// Controller runs submissions. The history store is an injected
// capability so tests can substitute an in-memory implementation.
type Controller struct {
	client     *transfer.Client
	normalizer *normalize.Normalizer
	history    history.Store
	log        *logrus.Entry
	onProgress transfer.ProgressFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithProgress installs an advisory upload progress callback.
func WithProgress(fn transfer.ProgressFunc) Option {
	return func(c *Controller) {
		c.onProgress = fn
	}
}

// NewController wires the pipeline around a transfer client and a
// history store. The normalizer resolves relative image paths against
// the client's configured origin.
func NewController(client *transfer.Client, store history.Store, log *logrus.Entry, opts ...Option) *Controller {
	c := &Controller{
		client:     client,
		normalizer: normalize.New(client.Origin()),
		history:    store,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit runs one submission through the full pipeline and returns an
// ordered stream of transitions. The stream is closed after the
// terminal Succeeded or Failed transition; a new submission starts a
// fresh instance. There is no automatic retry — re-invoking Submit is
// the caller's decision.
func (c *Controller) Submit(ctx context.Context, sub models.ScanSubmission) <-chan Transition {
	// Buffer covers the longest possible path so emitting never
	// blocks on a slow consumer.
	out := make(chan Transition, 8)

	go func() {
		defer close(out)

		out <- Transition{State: StateValidating}
		if err := validate.Submission(sub); err != nil {
			c.log.WithError(err).Warn("submission rejected")
			out <- Transition{State: StateFailed, Failure: &Failure{Class: FailureValidation, Err: err}}
			return
		}

		out <- Transition{State: StateUploading}
		scanID, err := c.client.Upload(ctx, sub, c.onProgress)
		if err != nil {
			c.log.WithError(err).Warn("upload failed")
			out <- Transition{State: StateFailed, Failure: &Failure{Class: FailureTransfer, Err: err}}
			return
		}

		out <- Transition{State: StateAwaitingResult, ScanID: scanID}
		result, err := c.FetchResult(ctx, scanID)
		if err != nil {
			c.log.WithError(err).Warn("result retrieval failed")
			out <- Transition{State: StateFailed, ScanID: scanID, Failure: &Failure{Class: FailureRetrieval, Err: err}}
			return
		}

		out <- Transition{State: StateSucceeded, ScanID: scanID, Result: result}
	}()

	return out
}

// FetchResult retrieves and normalizes the result for a scan id, then
// appends a summary to the local history. The append is best-effort:
// a failing history store is logged and never fails the fetch.
func (c *Controller) FetchResult(ctx context.Context, scanID string) (*models.ScanResult, error) {
	raw, err := c.client.GetResult(ctx, scanID)
	if err != nil {
		return nil, err
	}

	result, err := c.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if err := c.history.Append(models.HistoryEntry{
		ID:             scanID,
		Timestamp:      result.Timestamp,
		Classification: result.Prediction.Classification,
		Confidence:     result.Prediction.Confidence,
	}); err != nil {
		c.log.WithError(err).Warn("failed to update scan history")
	}

	return result, nil
}

// History returns the locally stored scan summaries in append order.
func (c *Controller) History() []models.HistoryEntry {
	entries, err := c.history.List()
	if err != nil || entries == nil {
		return []models.HistoryEntry{}
	}
	return entries
}
