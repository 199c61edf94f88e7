// Package mockapi implements a stand-in for the NeuroScan inference
// service, matching its wire contract so the client can be developed
// and tested without the real model: multipart upload, result fetch,
// classification catalog and static scan images.
package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/neuroscan/scanclient/internal/models"
)

// Handler serves the mock inference API.
type Handler struct {
	store *ScanStore
	log   *logrus.Entry
}

// NewHandler creates a Handler backed by store.
func NewHandler(store *ScanStore, log *logrus.Entry) *Handler {
	return &Handler{store: store, log: log}
}

// uploadScanResponse mirrors the reference service: the scan id plus
// the full result inline.
type uploadScanResponse struct {
	ScanID string             `json:"scan_id"`
	Result *models.ScanResult `json:"result"`
}

// HandleUploadScan accepts a multipart scan upload, fabricates a
// prediction and persists image and result.
func (h *Handler) HandleUploadScan(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided")
	}

	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		return NewBadRequestError("Invalid file type. Image expected.")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	contents, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	scanID := uuid.New().String()
	if _, err := h.store.SaveImage(scanID, contents); err != nil {
		return NewInternalError("failed to store scan image", err)
	}

	result := &models.ScanResult{
		ID:         scanID,
		Timestamp:  time.Now().Format(time.RFC3339),
		ImageURL:   "/uploads/" + scanID + ".jpg",
		Prediction: fabricatePrediction(contents),
	}

	// Patient metadata is optional and tolerated when malformed,
	// matching the reference service.
	if raw := c.FormValue("patientInfo"); raw != "" {
		var patient models.PatientInfo
		if err := json.Unmarshal([]byte(raw), &patient); err != nil {
			h.log.WithError(err).Warn("ignoring invalid patientInfo JSON")
		} else {
			result.PatientInfo = &patient
		}
	}

	if err := h.store.SaveResult(result); err != nil {
		return NewInternalError("failed to store scan result", err)
	}

	h.log.WithFields(logrus.Fields{
		"scanId":         scanID,
		"classification": result.Prediction.Classification,
	}).Info("scan processed")

	return c.JSON(http.StatusOK, uploadScanResponse{ScanID: scanID, Result: result})
}

// HandleGetScanResult returns the stored result for a scan id.
func (h *Handler) HandleGetScanResult(c echo.Context) error {
	scanID := c.Param("id")
	if scanID == "" {
		return NewBadRequestError("scan id is required")
	}

	result, err := h.store.GetResult(scanID)
	if err != nil {
		return NewNotFoundError("Scan ID not found")
	}

	return c.JSON(http.StatusOK, result)
}

// HandleListClassifications returns the fixed diagnostic catalog.
func (h *Handler) HandleListClassifications(c echo.Context) error {
	return c.JSON(http.StatusOK, defaultCatalog)
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes attaches the mock API to an echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = ErrorHandler

	e.POST("/upload-scan/", h.HandleUploadScan)
	e.GET("/scan-results/:id", h.HandleGetScanResult)
	e.GET("/classifications/", h.HandleListClassifications)
	e.GET("/health", h.HandleHealth)
	e.Static("/uploads", h.store.UploadDir())
}
