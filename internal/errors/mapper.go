package errors

import (
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/starterkit/server/internal/odm"
)

func classifyMapper(err error) (Result, bool) {
	var mapperErr *odm.Error
	if !errors.As(err, &mapperErr) {
		return Result{}, false
	}

	msg := mapperErr.Error()

	switch mapperErr.Kind {
	case odm.KindMissingSchema:
		return Result{
			Status:   http.StatusInternalServerError,
			Category: CategoryInternalSchema,
			Summary:  "Database schema is missing",
			Detail:   Message(msg),
		}, true
	case odm.KindOverwriteModel:
		return Result{
			Status:   http.StatusInternalServerError,
			Category: CategoryInternalSchema,
			Summary:  "Model overwrite error",
			Detail:   Message(msg),
		}, true
	case odm.KindParallelSave:
		return Result{
			Status:   http.StatusConflict,
			Category: CategoryWriteConflict,
			Summary:  "Document was modified by another operation",
			Detail:   Message(msg),
		}, true
	case odm.KindVersion:
		return Result{
			Status:   http.StatusConflict,
			Category: CategoryWriteConflict,
			Summary:  "Document version conflict",
			Detail:   Message(msg),
		}, true
	case odm.KindDivergentArray:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryArrayUpdate,
			Summary:  "Array update operation failed",
			Detail:   Message(msg),
		}, true
	case odm.KindValidation:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryValidation,
			Summary:  "Data validation failed",
			Detail:   mapperFieldErrors(mapperErr),
		}, true
	case odm.KindStrictMode:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategorySchemaMismatch,
			Summary:  "Field not in schema",
			Detail:   Message(msg),
		}, true
	case odm.KindCast:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryInvalidIdentifier,
			Summary:  "The provided ID is not in the correct format",
			Detail:   Message(fmt.Sprintf("Invalid %s format: %v", mapperErr.Path, mapperErr.Value)),
		}, true
	default:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryGenericMapper,
			Summary:  "Database operation failed",
			Detail:   Message(msg),
		}, true
	}
}

func mapperFieldErrors(e *odm.Error) FieldErrors {
	out := make(FieldErrors, len(e.Fields))

	for path, fe := range e.Fields {
		out[path] = FieldDetail{
			Message: fe.Message,
			Value:   fe.Value,
			Kind:    fe.Kind,
		}
	}

	return out
}
