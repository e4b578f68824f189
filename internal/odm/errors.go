package odm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind tells the mapper error sub-types apart.
type Kind string

const (
	KindMissingSchema  = Kind("MissingSchemaError")
	KindOverwriteModel = Kind("OverwriteModelError")
	KindParallelSave   = Kind("ParallelSaveError")
	KindVersion        = Kind("VersionError")
	KindDivergentArray = Kind("DivergentArrayError")
	KindValidation     = Kind("ValidationError")
	KindStrictMode     = Kind("StrictModeError")
	KindCast           = Kind("CastError")
	KindDocument       = Kind("DocumentError")
)

// ErrNoDocument is returned by lookups that matched nothing.
var ErrNoDocument = errors.New("odm: no document found")

// Error is returned by every mapper operation that fails before or instead of
// reaching the driver. Driver errors are wrapped in Err and stay reachable
// through errors.As.
type Error struct {
	Kind    Kind
	Model   string
	Path    string
	Value   any
	Message string
	Fields  map[string]*FieldError // set for KindValidation
	Err     error
}

// FieldError describes one failed validator.
type FieldError struct {
	Path    string
	Message string
	Value   any
	Kind    string // required, minlength, maxlength, regexp, enum, cast
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		paths := make([]string, 0, len(e.Fields))
		for p := range e.Fields {
			paths = append(paths, p)
		}

		sort.Strings(paths)

		parts := make([]string, 0, len(paths))
		for _, p := range paths {
			parts = append(parts, p+": "+e.Fields[p].Message)
		}

		return fmt.Sprintf("%s validation failed: %s", e.Model, strings.Join(parts, ", "))
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// returns the mapper error kind of err, if it is one
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return "", false
}

func missingSchema(name string) *Error {
	return &Error{
		Kind:    KindMissingSchema,
		Model:   name,
		Message: fmt.Sprintf("schema hasn't been registered for model %q", name),
	}
}

func overwriteModel(name string) *Error {
	return &Error{
		Kind:    KindOverwriteModel,
		Model:   name,
		Message: fmt.Sprintf("cannot overwrite model %q once registered", name),
	}
}

func castError(model, path string, value any, kind string) *Error {
	return &Error{
		Kind:    KindCast,
		Model:   model,
		Path:    path,
		Value:   value,
		Message: fmt.Sprintf("cast to %s failed for value %q at path %q for model %q", kind, fmt.Sprint(value), path, model),
	}
}

func strictMode(model, path string) *Error {
	return &Error{
		Kind:    KindStrictMode,
		Model:   model,
		Path:    path,
		Message: fmt.Sprintf("field %q is not in schema and strict mode is set to throw", path),
	}
}
