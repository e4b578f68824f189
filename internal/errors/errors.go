package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Never write error JSON directly. Call errors.Abort(c, err) and return.
//     The dispatcher classifies the error, writes the envelope and logs it.
//   - Use the constructors below (errors.NotFound(), errors.Forbidden(), ...)
//     when the handler already knows the intended status code
//   - Never log an error before aborting with it (the dispatcher logs it)
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//     so driver errors stay reachable through errors.As
//   - Convert "no rows"/"no documents" into errors.NotFound() where the
//     caller would otherwise have to know the driver
//   - Do not log errors in non-handler code (avoid double logging)

// represents a standardized error body for explicit application errors
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details
}

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeBadRequest      = "bad_request"
	CodeConflict        = "conflict"
	CodeTooManyRequests = "too_many_requests"
)

// HTTPError is an explicit application error. It already carries the status
// code and body the client should see and is never re-classified.
type HTTPError struct {
	Status int
	Body   any
	Err    error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}

	if e.Err != nil {
		return fmt.Sprintf("http %d: %v", e.Status, e.Err)
	}

	if r, ok := e.Body.(ErrorResponse); ok {
		return fmt.Sprintf("http %d: %s", e.Status, r.Message)
	}

	return fmt.Sprintf("http %d: %v", e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// creates an explicit application error with an arbitrary body
func New(status int, body any) *HTTPError {
	return &HTTPError{Status: status, Body: body}
}

// returns a 401 unauthorized error
func Unauthorized(message string) *HTTPError {
	if message == "" {
		message = "authentication required"
	}

	return New(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(message string) *HTTPError {
	if message == "" {
		message = "permission denied"
	}

	return New(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(resource string) *HTTPError {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	return New(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(message string, err error) *HTTPError {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
	}

	return &HTTPError{Status: http.StatusBadRequest, Body: response, Err: err}
}

// returns a 409 conflict error
func Conflict(message string) *HTTPError {
	if message == "" {
		message = "resource conflict"
	}

	return New(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(message string) *HTTPError {
	if message == "" {
		message = "too many requests"
	}

	return New(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// reports whether err is (or wraps) an explicit application error with the given status
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr != nil && httpErr.Status == status
}

// attaches err to the request and stops the handler chain. The dispatcher
// middleware turns it into the response envelope.
func Abort(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("abort called without an error")
	}

	_ = c.Error(err) //nolint:errcheck // returns its argument wrapped
	c.Abort()
}
