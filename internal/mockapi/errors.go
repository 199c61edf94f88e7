// errors.go - Structured error responses for the mock inference service
package mockapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is an error response in the service's wire shape: a status
// code and a "detail" message, which is what the client surfaces to
// the user on transfer failures.
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(detail string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Detail: detail}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

// NewInternalError creates a 500 Internal Server Error.
func NewInternalError(detail string, cause error) *APIError {
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", detail, cause)
	}
	return &APIError{Status: http.StatusInternalServerError, Detail: detail}
}

// ErrorHandler renders APIErrors as JSON detail bodies.
// Usage: e.HTTPErrorHandler = mockapi.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{Status: e.Code, Detail: fmt.Sprintf("%v", e.Message)}
	default:
		apiErr = &APIError{Status: http.StatusInternalServerError, Detail: "An unexpected error occurred"}
	}

	c.JSON(apiErr.Status, apiErr)
}
