package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// document store server error codes
const (
	mongoCodeUnauthorized       = 13
	mongoCodeAuthFailed         = 18
	mongoCodeDocumentValidation = 121
	mongoCodeDuplicateKey       = 11000
)

func classifyDocumentStore(err error) (Result, bool) {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return classifyMongoServerError(err, serverErr), true
	}

	if isMongoConnectionError(err) {
		return documentStoreUnavailable(err), true
	}

	return Result{}, false
}

func classifyMongoServerError(err error, serverErr mongo.ServerError) Result {
	msg := err.Error()

	switch {
	case serverErr.HasErrorCode(mongoCodeUnauthorized):
		return Result{
			Status:   http.StatusForbidden,
			Category: CategoryPermission,
			Summary:  "Insufficient database permissions",
			Detail:   Message(msg),
		}
	case serverErr.HasErrorCode(mongoCodeAuthFailed):
		return Result{
			Status:   http.StatusUnauthorized,
			Category: CategoryAuth,
			Summary:  "Database authentication failed",
			Detail:   Message(msg),
		}
	case serverErr.HasErrorCode(mongoCodeDocumentValidation):
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryValidation,
			Summary:  "Document validation failed",
			Detail:   Message(msg),
		}
	case serverErr.HasErrorCode(mongoCodeDuplicateKey) || mongo.IsDuplicateKeyError(err):
		return Result{
			Status:   http.StatusConflict,
			Category: CategoryDuplicateEntry,
			Summary:  "A record with this information already exists",
			Detail:   Message(duplicateKeyMessage(duplicateKeyPairs(err))),
		}
	case containsAny(msg, connectionSignals...) || strings.Contains(msg, "server selection timeout"):
		return documentStoreUnavailable(err)
	default:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryGenericStore,
			Summary:  fmt.Sprintf("Database operation failed (code %d)", mongoCode(err)),
			Detail:   Message(msg),
		}
	}
}

func isMongoConnectionError(err error) bool {
	if mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}

	return strings.Contains(err.Error(), "server selection")
}

func documentStoreUnavailable(err error) Result {
	return Result{
		Status:   http.StatusServiceUnavailable,
		Category: CategoryConnection,
		Summary:  "Unable to connect to database",
		Detail:   Message(err.Error()),
	}
}

// renders duplicate key pairs; falls back to a generic message when the reply had none
func duplicateKeyMessage(pairs []string) string {
	if len(pairs) == 0 {
		return "Duplicate key constraint violation"
	}

	return "Duplicate value for field(s): " + strings.Join(pairs, ", ")
}

// extracts field=value pairs from the keyValue document of a duplicate key reply
func duplicateKeyPairs(err error) []string {
	for _, raw := range mongoReplies(err) {
		if pairs := keyValuePairs(raw); len(pairs) > 0 {
			return pairs
		}
	}

	return nil
}

func mongoReplies(err error) []bson.Raw {
	var replies []bson.Raw

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			replies = append(replies, we.Raw)
		}

		replies = append(replies, writeErr.Raw)
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) {
		for _, we := range bulkErr.WriteErrors {
			replies = append(replies, we.Raw)
		}
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		replies = append(replies, cmdErr.Raw)
	}

	return replies
}

func keyValuePairs(raw bson.Raw) []string {
	if len(raw) == 0 {
		return nil
	}

	val, err := raw.LookupErr("keyValue")
	if err != nil {
		return nil
	}

	doc, ok := val.DocumentOK()
	if !ok {
		return nil
	}

	elems, err := doc.Elements()
	if err != nil {
		return nil
	}

	pairs := make([]string, 0, len(elems))
	for _, el := range elems {
		pairs = append(pairs, el.Key()+"="+rawValueString(el.Value()))
	}

	return pairs
}

func rawValueString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bson.TypeInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case bson.TypeDouble:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case bson.TypeBoolean:
		return strconv.FormatBool(v.Boolean())
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	default:
		return v.String()
	}
}

// returns the first server error code carried by err
func mongoCode(err error) int {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return int(cmdErr.Code)
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		if len(writeErr.WriteErrors) > 0 {
			return writeErr.WriteErrors[0].Code
		}

		if writeErr.WriteConcernError != nil {
			return writeErr.WriteConcernError.Code
		}
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) && len(bulkErr.WriteErrors) > 0 {
		return bulkErr.WriteErrors[0].Code
	}

	return 0
}
