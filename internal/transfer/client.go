// Package transfer implements the HTTP client for the inference
// service. It owns the wire contract and the uniform error taxonomy;
// nothing here retries automatically — a failed attempt surfaces to
// the caller, because a blind retry of a non-idempotent multipart
// upload could submit the same scan twice.
package transfer

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/neuroscan/scanclient/internal/models"
	"github.com/neuroscan/scanclient/internal/scanerr"
)

// DefaultTimeout bounds every request, upload included. A request
// still pending after this long resolves to UNREACHABLE.
const DefaultTimeout = 30 * time.Second

// Middleware customizes the underlying HTTP client at construction
// time. Middleware is composed explicitly per Client instance; there
// is no process-global hook state.
type Middleware func(*resty.Client)

// ProgressFunc receives the advisory upload percentage. It is not part
// of the submission state machine.
type ProgressFunc func(percent int)

// Client talks to the inference service.
type Client struct {
	http   *resty.Client
	origin string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithMiddleware applies middleware to the underlying HTTP client.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Client) {
		for _, mw := range mws {
			mw(c.http)
		}
	}
}

// RequestLogging returns middleware that logs every request and
// response through log.
func RequestLogging(log *logrus.Entry) Middleware {
	return func(rc *resty.Client) {
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			log.WithFields(logrus.Fields{
				"method": req.Method,
				"url":    req.URL,
			}).Debug("sending request")
			return nil
		})
		rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			log.WithFields(logrus.Fields{
				"method":   resp.Request.Method,
				"url":      resp.Request.URL,
				"status":   resp.StatusCode(),
				"duration": resp.Time(),
			}).Debug("received response")
			return nil
		})
	}
}

// New creates a Client for the given service origin,
// e.g. "http://localhost:8000".
func New(origin string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(origin).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
		origin: origin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin returns the configured service origin.
func (c *Client) Origin() string {
	return c.origin
}

type uploadResponse struct {
	ScanID string `json:"scan_id"`
}

// detailBody is the FastAPI-style error shape the service uses.
type detailBody struct {
	Detail string `json:"detail"`
}

// Upload transmits one scan as a multipart body and returns the
// server-assigned scan id. onProgress may be nil.
func (c *Client) Upload(ctx context.Context, sub models.ScanSubmission, onProgress ProgressFunc) (string, error) {
	var body io.Reader = sub.File
	if onProgress != nil && sub.SizeBytes > 0 {
		body = &progressReader{r: sub.File, total: sub.SizeBytes, report: onProgress}
	}

	// The part carries the file's declared MIME type, as a browser
	// form upload would.
	req := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", sub.Filename, sub.MIMEType, body)

	if sub.Patient != nil {
		encoded, err := json.Marshal(sub.Patient)
		if err != nil {
			return "", scanerr.NewInvalidArgument("patient info is not serializable")
		}
		req.SetFormData(map[string]string{"patientInfo": string(encoded)})
	}

	resp, err := req.Post("/upload-scan/")
	if err != nil {
		return "", scanerr.NewUnreachable(err)
	}
	if resp.IsError() {
		return "", scanerr.NewTransferFailed(resp.StatusCode(), serverDetail(resp.Body()))
	}

	var out uploadResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", scanerr.NewMalformedResponse("upload response is not valid JSON", err)
	}
	if out.ScanID == "" {
		return "", scanerr.NewMalformedResponse("upload response missing scan_id", nil)
	}
	return out.ScanID, nil
}

// GetResult fetches the raw result payload for a scan id. The payload
// is returned undecoded; shaping it is the normalizer's job.
func (c *Client) GetResult(ctx context.Context, scanID string) ([]byte, error) {
	if scanID == "" {
		return nil, scanerr.NewInvalidArgument("scan id is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/scan-results/" + scanID)
	if err != nil {
		return nil, scanerr.NewUnreachable(err)
	}
	if resp.IsError() {
		return nil, scanerr.NewTransferFailed(resp.StatusCode(), serverDetail(resp.Body()))
	}
	if len(resp.Body()) == 0 {
		return nil, scanerr.NewMalformedResponse("scan result response has no body", nil)
	}
	return resp.Body(), nil
}

// ListClassifications fetches the diagnostic category catalog. A
// successful response that does not decode as an array violates the
// wire contract.
func (c *Client) ListClassifications(ctx context.Context) ([]models.Classification, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/classifications/")
	if err != nil {
		return nil, scanerr.NewUnreachable(err)
	}
	if resp.IsError() {
		return nil, scanerr.NewTransferFailed(resp.StatusCode(), serverDetail(resp.Body()))
	}

	var out []models.Classification
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, scanerr.NewMalformedResponse("classifications response is not an array", err)
	}
	return out, nil
}

// serverDetail extracts the server-provided error message, if any.
func serverDetail(body []byte) string {
	var d detailBody
	if err := json.Unmarshal(body, &d); err != nil {
		return ""
	}
	return d.Detail
}

// progressReader reports whole-percent upload progress as the
// multipart encoder drains the file.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct != p.last {
		p.last = pct
		p.report(pct)
	}
	return n, err
}
