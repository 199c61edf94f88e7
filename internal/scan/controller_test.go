package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscan/scanclient/internal/mockapi"
	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scanerr"
	"github.com/neuroscan/scanclient/internal/testutil"
	"github.com/neuroscan/scanclient/internal/transfer"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

// newMockService starts the full mock inference service and returns
// its base URL.
func newMockService(t *testing.T) string {
	t.Helper()

	store, err := mockapi.NewScanStore(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	mockapi.RegisterRoutes(e, mockapi.NewHandler(store, testLogger()))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL
}

func jpegSubmission(size int) models.ScanSubmission {
	content := bytes.Repeat([]byte{0xFF}, size)
	return models.ScanSubmission{
		File:      bytes.NewReader(content),
		Filename:  "scan.jpg",
		MIMEType:  "image/jpeg",
		SizeBytes: int64(size),
	}
}

func collect(ch <-chan Transition) []Transition {
	var out []Transition
	for tr := range ch {
		out = append(out, tr)
	}
	return out
}

func states(transitions []Transition) []State {
	out := make([]State, len(transitions))
	for i, tr := range transitions {
		out[i] = tr.State
	}
	return out
}

func TestSubmit_EndToEnd(t *testing.T) {
	origin := newMockService(t)
	store := testutil.NewMemHistory()
	controller := NewController(transfer.New(origin), store, testLogger())

	transitions := collect(controller.Submit(context.Background(), jpegSubmission(2*1024*1024)))

	require.Equal(t,
		[]State{StateValidating, StateUploading, StateAwaitingResult, StateSucceeded},
		states(transitions))

	terminal := transitions[len(transitions)-1]
	require.NotNil(t, terminal.Result)
	assert.NotEmpty(t, terminal.ScanID)
	assert.Equal(t, terminal.ScanID, terminal.Result.ID)

	// Normalization invariants hold on everything leaving the pipeline.
	assert.True(t, terminal.Result.Prediction.Confidence > 0 && terminal.Result.Prediction.Confidence <= 1)
	assert.Contains(t, terminal.Result.ImageURL, origin+"/uploads/")

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, terminal.ScanID, entries[0].ID)
	assert.Equal(t, terminal.Result.Prediction.Classification, entries[0].Classification)
}

func TestSubmit_OversizedFileNeverTouchesNetwork(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	store := testutil.NewMemHistory()
	controller := NewController(transfer.New(srv.URL), store, testLogger())

	transitions := collect(controller.Submit(context.Background(), jpegSubmission(15*1024*1024)))

	require.Equal(t, []State{StateValidating, StateFailed}, states(transitions))
	terminal := transitions[len(transitions)-1]
	require.NotNil(t, terminal.Failure)
	assert.Equal(t, FailureValidation, terminal.Failure.Class)
	assert.Equal(t, scanerr.KindTooLarge, scanerr.KindOf(terminal.Failure.Err))

	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "no HTTP request may be sent for an invalid file")

	entries, _ := store.List()
	assert.Empty(t, entries, "failed submissions leave no history")
}

func TestSubmit_NonImageFails(t *testing.T) {
	controller := NewController(transfer.New("http://127.0.0.1:0"), testutil.NewMemHistory(), testLogger())

	sub := models.ScanSubmission{
		File:      bytes.NewReader([]byte("%PDF-1.4")),
		Filename:  "report.pdf",
		MIMEType:  "application/pdf",
		SizeBytes: 8,
	}
	transitions := collect(controller.Submit(context.Background(), sub))

	terminal := transitions[len(transitions)-1]
	require.Equal(t, StateFailed, terminal.State)
	assert.Equal(t, FailureValidation, terminal.Failure.Class)
	assert.Equal(t, scanerr.KindInvalidType, scanerr.KindOf(terminal.Failure.Err))
}

func TestSubmit_UnreachableServiceFailsTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	controller := NewController(transfer.New(srv.URL), testutil.NewMemHistory(), testLogger())

	transitions := collect(controller.Submit(context.Background(), jpegSubmission(1024)))

	require.Equal(t, []State{StateValidating, StateUploading, StateFailed}, states(transitions))
	terminal := transitions[len(transitions)-1]
	assert.Equal(t, FailureTransfer, terminal.Failure.Class)
	assert.Equal(t, scanerr.KindUnreachable, scanerr.KindOf(terminal.Failure.Err))
}

func TestSubmit_MalformedResultFailsRetrieval(t *testing.T) {
	// Upload succeeds but the result payload violates the contract.
	mux := http.NewServeMux()
	mux.HandleFunc("/upload-scan/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"scan_id": "abc123"})
	})
	mux.HandleFunc("/scan-results/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "abc123"}`)) // missing everything else
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := testutil.NewMemHistory()
	controller := NewController(transfer.New(srv.URL), store, testLogger())

	transitions := collect(controller.Submit(context.Background(), jpegSubmission(1024)))

	require.Equal(t,
		[]State{StateValidating, StateUploading, StateAwaitingResult, StateFailed},
		states(transitions))
	terminal := transitions[len(transitions)-1]
	assert.Equal(t, FailureRetrieval, terminal.Failure.Class)
	assert.Equal(t, scanerr.KindMalformedResponse, scanerr.KindOf(terminal.Failure.Err))

	entries, _ := store.List()
	assert.Empty(t, entries)
}

func TestFetchResult_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	controller := NewController(transfer.New(srv.URL), testutil.NewMemHistory(), testLogger())

	_, err := controller.FetchResult(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, scanerr.KindUnreachable, scanerr.KindOf(err))
}

func TestFetchResult_HistoryFailureDoesNotFailFetch(t *testing.T) {
	origin := newMockService(t)
	failing := &testutil.FailingHistory{Err: assert.AnError}
	controller := NewController(transfer.New(origin), failing, testLogger())

	// Seed a scan through the mock service first.
	seed := NewController(transfer.New(origin), testutil.NewMemHistory(), testLogger())
	transitions := collect(seed.Submit(context.Background(), jpegSubmission(1024)))
	scanID := transitions[len(transitions)-1].ScanID
	require.NotEmpty(t, scanID)

	result, err := controller.FetchResult(context.Background(), scanID)
	require.NoError(t, err, "a failing history store must never fail the fetch")
	assert.Equal(t, scanID, result.ID)
}

func TestFetchResult_DuplicateFetchesDuplicateHistory(t *testing.T) {
	origin := newMockService(t)
	store := testutil.NewMemHistory()
	controller := NewController(transfer.New(origin), store, testLogger())

	transitions := collect(controller.Submit(context.Background(), jpegSubmission(1024)))
	scanID := transitions[len(transitions)-1].ScanID
	require.NotEmpty(t, scanID)

	_, err := controller.FetchResult(context.Background(), scanID)
	require.NoError(t, err)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2, "repeated fetches append duplicate entries")
}

func TestHistory_EmptyStoreYieldsEmptySlice(t *testing.T) {
	controller := NewController(transfer.New("http://127.0.0.1:0"), testutil.NewMemHistory(), testLogger())
	assert.NotNil(t, controller.History())
	assert.Empty(t, controller.History())
}
