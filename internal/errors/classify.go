package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// a family classifier reports whether err belongs to its family and, if so, how it maps
type classifyFunc func(err error) (Result, bool)

type familyClassifier struct {
	family   Family
	classify classifyFunc
}

// Classifier maps any failure to exactly one Result. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	chain []familyClassifier
}

// creates a classifier with the families in priority order
func NewClassifier() *Classifier {
	return &Classifier{
		chain: []familyClassifier{
			{FamilyHTTP, classifyHTTP},
			{FamilyDocumentStore, classifyDocumentStore},
			{FamilyRelationalStore, classifyRelationalStore},
			{FamilyMapper, classifyMapper},
			{FamilyCache, classifyCache},
			{FamilyRuntime, classifyRuntime},
		},
	}
}

// classifies a raw failure. raw is usually an error; anything else (a
// recovered panic value, nil) is classified as unknown.
func (c *Classifier) Classify(raw any) Result {
	err, ok := raw.(error)
	if !ok || err == nil {
		return unknownResult(raw)
	}

	for _, fc := range c.chain {
		if res, matched := fc.classify(err); matched {
			res.Family = fc.family
			return res
		}
	}

	// unreachable: the runtime family accepts every error
	return Result{
		Status:   http.StatusInternalServerError,
		Category: CategoryInternal,
		Family:   FamilyRuntime,
		Summary:  "An unexpected error occurred",
		Detail:   Message(err.Error()),
	}
}

func unknownResult(raw any) Result {
	return Result{
		Status:   http.StatusInternalServerError,
		Category: CategoryUnknown,
		Family:   FamilyUnknown,
		Summary:  "An unknown error occurred",
		Detail:   Message(fmt.Sprint(raw)),
	}
}

func classifyHTTP(err error) (Result, bool) {
	// a nil *HTTPError carries no status; it falls through to the runtime family
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr == nil {
		return Result{}, false
	}

	status := httpErr.Status
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	return Result{
		Status:   status,
		Category: CategoryPassThrough,
		Summary:  http.StatusText(status),
		Detail:   Passthrough{Body: httpErr.Body},
	}, true
}

// substrings that mark a refused, unresolvable or timed out connection
var connectionSignals = []string{
	"ECONNREFUSED",
	"ENOTFOUND",
	"ETIMEDOUT",
	"connection refused",
	"no such host",
	"i/o timeout",
	"connection timeout",
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
