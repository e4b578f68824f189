package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// names an error may announce through Name() to pick a runtime category
const (
	nameReferenceError  = "ReferenceError"
	nameSyntaxError     = "SyntaxError"
	nameTypeError       = "TypeError"
	nameRangeError      = "RangeError"
	nameValidationError = "ValidationError"
)

// accepts every error; it is the last family in the chain
func classifyRuntime(err error) (Result, bool) {
	msg := err.Error()

	if strings.Contains(msg, "network") || strings.Contains(msg, "connection") {
		return Result{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryServiceUnavailable,
			Summary:  "Service temporarily unavailable",
			Detail:   Message(msg),
		}, true
	}

	if strings.Contains(msg, "timeout") || isTimeout(err) {
		return Result{
			Status:   http.StatusRequestTimeout,
			Category: CategoryRequestTimeout,
			Summary:  "The request timed out",
			Detail:   Message(msg),
		}, true
	}

	switch runtimeName(err) {
	case nameReferenceError:
		return Result{
			Status:   http.StatusInternalServerError,
			Category: CategoryReference,
			Summary:  "Internal reference error",
			Detail:   Message(msg),
		}, true
	case nameSyntaxError:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategorySyntax,
			Summary:  "Invalid syntax in request",
			Detail:   Message(msg),
		}, true
	case nameTypeError:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryType,
			Summary:  "Invalid data type provided",
			Detail:   Message(msg),
		}, true
	case nameRangeError:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryRange,
			Summary:  "Value out of valid range",
			Detail:   Message(msg),
		}, true
	case nameValidationError:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryValidation,
			Summary:  "Data validation failed",
			Detail:   validationDetail(err),
		}, true
	}

	return Result{
		Status:   http.StatusInternalServerError,
		Category: CategoryInternal,
		Summary:  "An unexpected error occurred",
		Detail:   Message(msg),
	}, true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// maps Go error types onto the runtime error names
func runtimeName(err error) string {
	var n named
	if errors.As(err, &n) {
		switch name := n.Name(); name {
		case nameReferenceError, nameSyntaxError, nameTypeError, nameRangeError, nameValidationError:
			return name
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return nameValidationError
	}

	var jsonSyntax *json.SyntaxError
	if errors.As(err, &jsonSyntax) || errors.Is(err, strconv.ErrSyntax) {
		return nameSyntaxError
	}

	var jsonType *json.UnmarshalTypeError
	var assertion *runtime.TypeAssertionError
	if errors.As(err, &jsonType) || errors.As(err, &assertion) {
		return nameTypeError
	}

	if errors.Is(err, strconv.ErrRange) {
		return nameRangeError
	}

	var rtErr runtime.Error
	if errors.As(err, &rtErr) {
		msg := rtErr.Error()

		switch {
		case strings.Contains(msg, "nil pointer dereference"), strings.Contains(msg, "nil map"):
			return nameReferenceError
		case strings.Contains(msg, "out of range"):
			return nameRangeError
		}
	}

	return ""
}

// per-field detail for request binding failures
func validationDetail(err error) Detail {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Message(err.Error())
	}

	out := make(FieldErrors, len(validationErrs))
	for _, fe := range validationErrs {
		out[fe.Field()] = FieldDetail{
			Message: fe.Error(),
			Value:   fe.Value(),
			Kind:    fe.Tag(),
		}
	}

	return out
}
