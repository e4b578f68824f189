package errors

import (
	"encoding/json"
)

// Category is the stable label attached to every classified failure.
type Category string

// error categories, one per row of the classification table
const (
	CategoryPassThrough = Category("pass-through")

	// store errors (document and relational)
	CategoryPermission        = Category("permission-error")
	CategoryAuth              = Category("auth-error")
	CategoryValidation        = Category("validation-error")
	CategoryDuplicateEntry    = Category("duplicate-entry")
	CategoryConnection        = Category("connection-error")
	CategoryGenericStore      = Category("generic-store-error")
	CategoryInternalSchema    = Category("internal-schema-error")
	CategoryWriteConflict     = Category("write-conflict")
	CategoryArrayUpdate       = Category("array-update-error")
	CategorySchemaMismatch    = Category("schema-mismatch")
	CategoryInvalidIdentifier = Category("invalid-identifier")
	CategoryGenericMapper     = Category("generic-mapper-error")

	// cache errors
	CategoryCacheUnavailable       = Category("cache-unavailable")
	CategoryCacheStorageFull       = Category("cache-storage-full")
	CategoryCacheConnectionAborted = Category("cache-connection-aborted")
	CategoryCacheParse             = Category("cache-parse-error")
	CategoryCacheCommand           = Category("cache-command-error")
	CategoryGenericCache           = Category("generic-cache-error")

	// runtime errors
	CategoryServiceUnavailable = Category("service-unavailable")
	CategoryRequestTimeout     = Category("request-timeout")
	CategoryReference          = Category("reference-error")
	CategorySyntax             = Category("syntax-error")
	CategoryType               = Category("type-error")
	CategoryRange              = Category("range-error")
	CategoryInternal           = Category("internal-error")
	CategoryUnknown            = Category("unknown-error")
)

// Family identifies which origin produced a failure. Families are checked in
// declaration order and the first match wins.
type Family int

const (
	FamilyHTTP Family = iota + 1
	FamilyDocumentStore
	FamilyRelationalStore
	FamilyMapper
	FamilyCache
	FamilyRuntime
	FamilyUnknown
)

func (f Family) String() string {
	switch f {
	case FamilyHTTP:
		return "http"
	case FamilyDocumentStore:
		return "document-store"
	case FamilyRelationalStore:
		return "relational-store"
	case FamilyMapper:
		return "mapper"
	case FamilyCache:
		return "cache"
	case FamilyRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Result is the outcome of classifying a single failure.
type Result struct {
	Status   int
	Category Category
	Family   Family
	Summary  string // short human label, used in logs
	Detail   Detail
}

// Detail is the client-facing part of a Result. The set of implementations
// is closed: Message, FieldErrors, CacheDetail and Passthrough.
type Detail interface {
	isDetail()
}

// plain text detail
type Message string

// per-field validation detail keyed by field path
type FieldErrors map[string]FieldDetail

type FieldDetail struct {
	Message string `json:"message"`
	Value   any    `json:"value"`
	Kind    string `json:"kind,omitempty"`
}

// structured detail for cache failures
type CacheDetail struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Passthrough carries the body of an explicit application error unchanged.
type Passthrough struct {
	Body any
}

func (Message) isDetail()     {}
func (FieldErrors) isDetail() {}
func (CacheDetail) isDetail() {}
func (Passthrough) isDetail() {}

func (p Passthrough) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Body)
}

// Envelope is the response body written for every failed request.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Response   Detail `json:"response"`
}

// Record is what the dispatcher hands to its logging sink.
type Record struct {
	Category Category
	Summary  string
	Method   string
	Path     string
	Envelope Envelope
	Cause    any
}
