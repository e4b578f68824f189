package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/odm"
)

// error announcing a type name, as thrown by foreign code
type namedError struct {
	name string
	msg  string
}

func (e namedError) Error() string { return e.msg }
func (e namedError) Name() string  { return e.name }

func duplicateKeyError(t *testing.T, keyValue bson.D) mongo.WriteException {
	t.Helper()

	raw, err := bson.Marshal(bson.D{{Key: "keyValue", Value: keyValue}})
	require.NoError(t, err)

	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.users index: email_1 dup key",
			Raw:     bson.Raw(raw),
		}},
	}
}

func recoverPanic(fn func()) (recovered any) {
	defer func() {
		recovered = recover()
	}()

	fn()

	return nil
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := NewClassifier()

	// an explicit application error wrapping a store error is never re-classified
	wrapped := &HTTPError{
		Status: http.StatusConflict,
		Body:   ErrorResponse{Error: CodeConflict, Message: "email taken"},
		Err:    duplicateKeyError(t, bson.D{{Key: "email", Value: "a@x.com"}}),
	}

	res := c.Classify(wrapped)

	assert.Equal(t, FamilyHTTP, res.Family)
	assert.Equal(t, CategoryPassThrough, res.Category)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, Passthrough{Body: wrapped.Body}, res.Detail)
}

func TestClassify_HTTPError(t *testing.T) {
	c := NewClassifier()

	res := c.Classify(fmt.Errorf("handler: %w", NotFound("user")))
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, CategoryPassThrough, res.Category)

	// a status outside the error range is coerced
	res = c.Classify(New(http.StatusOK, "fine"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestClassify_NilHTTPError(t *testing.T) {
	c := NewClassifier()

	var httpErr *HTTPError
	var err error = httpErr

	res := c.Classify(err)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, CategoryInternal, res.Category)
	assert.Equal(t, FamilyRuntime, res.Family)

	res = c.Classify(fmt.Errorf("handler: %w", err))
	assert.Equal(t, http.StatusInternalServerError, res.Status)

	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestFieldDetail_KeepsZeroValue(t *testing.T) {
	data, err := json.Marshal(FieldErrors{
		"name":     {Message: "Path `name` is required.", Value: "", Kind: "required"},
		"quantity": {Message: "must be positive", Value: 0, Kind: "min"},
		"isActive": {Message: "must be set", Value: false, Kind: "required"},
	})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"name":{"message":"Path `+"`name`"+` is required.","value":"","kind":"required"}`)
	assert.Contains(t, string(data), `"value":0`)
	assert.Contains(t, string(data), `"value":false`)
}

func TestClassify_DocumentStore(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		err      error
		status   int
		category Category
	}{
		{"unauthorized", mongo.CommandError{Code: 13, Message: "not authorized on shop"}, 403, CategoryPermission},
		{"auth failed", mongo.CommandError{Code: 18, Message: "Authentication failed."}, 401, CategoryAuth},
		{"document validation", mongo.CommandError{Code: 121, Message: "Document failed validation"}, 400, CategoryValidation},
		{"duplicate key", duplicateKeyError(t, bson.D{{Key: "email", Value: "a@x.com"}}), 409, CategoryDuplicateEntry},
		{"connection message", mongo.CommandError{Code: 6, Message: "connection refused"}, 503, CategoryConnection},
		{"client disconnected", fmt.Errorf("find: %w", mongo.ErrClientDisconnected), 503, CategoryConnection},
		{"server selection", errors.New("server selection error: context deadline exceeded"), 503, CategoryConnection},
		{"other code", mongo.CommandError{Code: 2, Message: "BadValue"}, 400, CategoryGenericStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.err)

			assert.Equal(t, FamilyDocumentStore, res.Family)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.category, res.Category)
		})
	}
}

func TestClassify_DuplicateKeyDetail(t *testing.T) {
	c := NewClassifier()

	res := c.Classify(fmt.Errorf("insert user: %w", duplicateKeyError(t, bson.D{{Key: "email", Value: "a@x.com"}})))
	assert.Equal(t, Message("Duplicate value for field(s): email=a@x.com"), res.Detail)

	res = c.Classify(duplicateKeyError(t, bson.D{{Key: "tenant", Value: int32(7)}, {Key: "sku", Value: "A-1"}}))
	assert.Equal(t, Message("Duplicate value for field(s): tenant=7, sku=A-1"), res.Detail)

	// no keyValue in the reply
	res = c.Classify(mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000"}}})
	assert.Equal(t, Message("Duplicate key constraint violation"), res.Detail)
}

func TestClassify_GenericStoreSummaryNamesCode(t *testing.T) {
	res := NewClassifier().Classify(mongo.CommandError{Code: 2, Message: "BadValue"})

	assert.Equal(t, "Database operation failed (code 2)", res.Summary)
}

func TestClassify_RelationalStore(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		err      *pgconn.PgError
		status   int
		category Category
	}{
		{"privilege", &pgconn.PgError{Code: "42501", Message: "permission denied for table orders"}, 403, CategoryPermission},
		{"password", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, 401, CategoryAuth},
		{"unique", &pgconn.PgError{Code: "23505", Detail: "Key (id)=(1) already exists."}, 409, CategoryDuplicateEntry},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "customer"}, 400, CategoryValidation},
		{"text repr", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}, 400, CategoryInvalidIdentifier},
		{"serialization", &pgconn.PgError{Code: "40001"}, 409, CategoryWriteConflict},
		{"connection class", &pgconn.PgError{Code: "08006"}, 503, CategoryConnection},
		{"canceled", &pgconn.PgError{Code: "57014"}, 408, CategoryRequestTimeout},
		{"other", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, 400, CategoryGenericStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(fmt.Errorf("query: %w", tt.err))

			assert.Equal(t, FamilyRelationalStore, res.Family)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.category, res.Category)
		})
	}
}

func TestClassify_RelationalDetails(t *testing.T) {
	c := NewClassifier()

	res := c.Classify(&pgconn.PgError{Code: "23505", Detail: "Key (customer, product)=(ann, lamp) already exists."})
	assert.Equal(t, Message("Duplicate value for field(s): customer=ann, product=lamp"), res.Detail)

	res = c.Classify(&pgconn.PgError{
		Code:       "23502",
		Message:    `null value in column "customer" violates not-null constraint`,
		ColumnName: "customer",
	})

	fields, ok := res.Detail.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "required", fields["customer"].Kind)
}

func TestClassify_Mapper(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		kind     odm.Kind
		status   int
		category Category
	}{
		{odm.KindMissingSchema, 500, CategoryInternalSchema},
		{odm.KindOverwriteModel, 500, CategoryInternalSchema},
		{odm.KindParallelSave, 409, CategoryWriteConflict},
		{odm.KindVersion, 409, CategoryWriteConflict},
		{odm.KindDivergentArray, 400, CategoryArrayUpdate},
		{odm.KindValidation, 400, CategoryValidation},
		{odm.KindStrictMode, 400, CategorySchemaMismatch},
		{odm.KindCast, 400, CategoryInvalidIdentifier},
		{odm.KindDocument, 400, CategoryGenericMapper},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			res := c.Classify(&odm.Error{Kind: tt.kind, Model: "User", Message: "mapper failure"})

			assert.Equal(t, FamilyMapper, res.Family)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.category, res.Category)
		})
	}
}

func TestClassify_MapperValidationFields(t *testing.T) {
	err := &odm.Error{
		Kind:  odm.KindValidation,
		Model: "User",
		Fields: map[string]*odm.FieldError{
			"email": {Path: "email", Message: "Please enter a valid email address", Value: "nope", Kind: "regexp"},
		},
	}

	res := NewClassifier().Classify(err)

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, CategoryValidation, res.Category)
	assert.Equal(t, FieldErrors{
		"email": {Message: "Please enter a valid email address", Value: "nope", Kind: "regexp"},
	}, res.Detail)
}

func TestClassify_MapperCastNamesFieldAndValue(t *testing.T) {
	res := NewClassifier().Classify(&odm.Error{Kind: odm.KindCast, Model: "User", Path: "_id", Value: "123"})

	assert.Equal(t, Message("Invalid _id format: 123"), res.Detail)
}

func TestClassify_Cache(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		err      error
		status   int
		category Category
	}{
		{"connection timeout", errors.New("redis: connection timeout"), 503, CategoryCacheUnavailable},
		{"connection kind", &cache.Error{Op: "get", Kind: cache.KindConnection, Err: errors.New("dial tcp")}, 503, CategoryCacheUnavailable},
		{"out of memory", &cache.Error{Op: "set", Kind: cache.KindReply, Err: errors.New("OOM command not allowed")}, 507, CategoryCacheStorageFull},
		{"closed client", cache.Wrap("get", "k", redis.ErrClosed), 503, CategoryCacheConnectionAborted},
		{"parser", &cache.Error{Op: "get", Kind: cache.KindParser, Err: errors.New("can't parse reply")}, 500, CategoryCacheParse},
		{"reply", &cache.Error{Op: "incr", Kind: cache.KindReply, Err: errors.New("ERR value is not an integer")}, 400, CategoryCacheCommand},
		{"named reply", namedError{name: "ReplyError", msg: "WRONGTYPE Operation against a key"}, 400, CategoryCacheCommand},
		{"generic", &cache.Error{Op: "get", Kind: cache.KindGeneric, Err: errors.New("boom")}, 500, CategoryGenericCache},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.err)

			assert.Equal(t, FamilyCache, res.Family)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.category, res.Category)

			detail, ok := res.Detail.(CacheDetail)
			require.True(t, ok)
			assert.Equal(t, tt.err.Error(), detail.Message)
		})
	}
}

func TestClassify_Runtime(t *testing.T) {
	c := NewClassifier()

	var jsonTarget struct {
		N int `json:"n"`
	}

	syntaxErr := json.Unmarshal([]byte("{bad"), &jsonTarget)
	typeErr := json.Unmarshal([]byte(`{"n":"x"}`), &jsonTarget)
	_, atoiErr := strconv.Atoi("abc")
	_, rangeErr := strconv.ParseInt("99999999999999999999", 10, 64)

	tests := []struct {
		name     string
		err      error
		status   int
		category Category
	}{
		{"network", errors.New("network is unreachable"), 503, CategoryServiceUnavailable},
		{"deadline", fmt.Errorf("upstream: %w", context.DeadlineExceeded), 408, CategoryRequestTimeout},
		{"timeout message", errors.New("read timeout"), 408, CategoryRequestTimeout},
		{"json syntax", syntaxErr, 400, CategorySyntax},
		{"number syntax", atoiErr, 400, CategorySyntax},
		{"json type", typeErr, 400, CategoryType},
		{"named type", namedError{name: "TypeError", msg: "x is not a function"}, 400, CategoryType},
		{"number range", rangeErr, 400, CategoryRange},
		{"named reference", namedError{name: "ReferenceError", msg: "x is not defined"}, 500, CategoryReference},
		{"other", errors.New("boom"), 500, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)

			res := c.Classify(tt.err)

			assert.Equal(t, FamilyRuntime, res.Family)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.category, res.Category)
		})
	}
}

func TestClassify_RecoveredRuntimePanics(t *testing.T) {
	c := NewClassifier()

	badAssertion := recoverPanic(func() {
		var v any = "text"
		_ = v.(int)
	})

	nilDeref := recoverPanic(func() {
		var p *struct{ X int }
		_ = fmt.Sprint(p.X)
	})

	outOfRange := recoverPanic(func() {
		items := []int{}
		idx := len("abc")
		_ = fmt.Sprint(items[idx])
	})

	assert.Equal(t, CategoryType, c.Classify(badAssertion).Category)
	assert.Equal(t, http.StatusBadRequest, c.Classify(badAssertion).Status)
	assert.Equal(t, CategoryReference, c.Classify(nilDeref).Category)
	assert.Equal(t, CategoryRange, c.Classify(outOfRange).Category)
}

func TestClassify_BindingValidation(t *testing.T) {
	type signup struct {
		Email string `validate:"required,email"`
	}

	err := validator.New().Struct(signup{Email: "nope"})
	require.Error(t, err)

	res := NewClassifier().Classify(err)

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, CategoryValidation, res.Category)

	fields, ok := res.Detail.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "email", fields["Email"].Kind)
	assert.Equal(t, "nope", fields["Email"].Value)
}

func TestClassify_NonErrorValues(t *testing.T) {
	c := NewClassifier()

	res := c.Classify("boom")
	assert.Equal(t, FamilyUnknown, res.Family)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, CategoryUnknown, res.Category)
	assert.Equal(t, Message("boom"), res.Detail)

	res = c.Classify(nil)
	assert.Equal(t, CategoryUnknown, res.Category)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier()
	err := duplicateKeyError(t, bson.D{{Key: "email", Value: "a@x.com"}})

	assert.Equal(t, c.Classify(err), c.Classify(err))
}

func TestClassify_StatusAlwaysInErrorRange(t *testing.T) {
	c := NewClassifier()

	inputs := []any{
		"plain",
		42,
		errors.New("boom"),
		New(204, nil),
		New(700, nil),
		&odm.Error{Kind: odm.KindVersion},
		&cache.Error{Kind: cache.KindAbort, Err: errors.New("aborted")},
		&pgconn.PgError{Code: "XX000"},
	}

	for _, in := range inputs {
		res := c.Classify(in)
		assert.GreaterOrEqual(t, res.Status, 400, "%v", in)
		assert.LessOrEqual(t, res.Status, 599, "%v", in)
	}
}
