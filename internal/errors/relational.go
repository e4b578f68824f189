package errors

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgres SQLSTATE codes
const (
	pgInsufficientPrivilege   = "42501"
	pgInvalidAuthorization    = "28000"
	pgInvalidPassword         = "28P01"
	pgUniqueViolation         = "23505"
	pgNotNullViolation        = "23502"
	pgForeignKeyViolation     = "23503"
	pgCheckViolation          = "23514"
	pgStringDataRightTrunc    = "22001"
	pgInvalidTextRepr         = "22P02"
	pgSerializationFailure    = "40001"
	pgDeadlockDetected        = "40P01"
	pgQueryCanceled           = "57014"
	pgConnectionExceptionsPfx = "08"
)

// Key (email)=(a@x.com) already exists.
var pgKeyDetailRegex = regexp.MustCompile(`^Key \((.+)\)=\((.*)\) already exists\.?$`)

func classifyRelationalStore(err error) (Result, bool) {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return Result{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryConnection,
			Summary:  "Unable to connect to database",
			Detail:   Message(err.Error()),
		}, true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Result{}, false
	}

	msg := pgErr.Message

	switch {
	case pgErr.Code == pgInsufficientPrivilege:
		return Result{
			Status:   http.StatusForbidden,
			Category: CategoryPermission,
			Summary:  "Insufficient database permissions",
			Detail:   Message(msg),
		}, true
	case pgErr.Code == pgInvalidAuthorization || pgErr.Code == pgInvalidPassword:
		return Result{
			Status:   http.StatusUnauthorized,
			Category: CategoryAuth,
			Summary:  "Database authentication failed",
			Detail:   Message(msg),
		}, true
	case pgErr.Code == pgUniqueViolation:
		return Result{
			Status:   http.StatusConflict,
			Category: CategoryDuplicateEntry,
			Summary:  "A record with this information already exists",
			Detail:   Message(duplicateKeyMessage(pgKeyPairs(pgErr.Detail))),
		}, true
	case pgErr.Code == pgNotNullViolation, pgErr.Code == pgForeignKeyViolation,
		pgErr.Code == pgCheckViolation, pgErr.Code == pgStringDataRightTrunc:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryValidation,
			Summary:  "Row validation failed",
			Detail:   pgFieldErrors(pgErr),
		}, true
	case pgErr.Code == pgInvalidTextRepr:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryInvalidIdentifier,
			Summary:  "Invalid identifier format",
			Detail:   Message(msg),
		}, true
	case pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected:
		return Result{
			Status:   http.StatusConflict,
			Category: CategoryWriteConflict,
			Summary:  "Row was modified by another transaction",
			Detail:   Message(msg),
		}, true
	case strings.HasPrefix(pgErr.Code, pgConnectionExceptionsPfx):
		return Result{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryConnection,
			Summary:  "Unable to connect to database",
			Detail:   Message(msg),
		}, true
	case pgErr.Code == pgQueryCanceled:
		return Result{
			Status:   http.StatusRequestTimeout,
			Category: CategoryRequestTimeout,
			Summary:  "The request timed out",
			Detail:   Message(msg),
		}, true
	default:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryGenericStore,
			Summary:  "Database operation failed (sqlstate " + pgErr.Code + ")",
			Detail:   Message(msg),
		}, true
	}
}

// parses the "Key (a, b)=(x, y) already exists." detail into a=x, b=y
func pgKeyPairs(detail string) []string {
	m := pgKeyDetailRegex.FindStringSubmatch(detail)
	if m == nil {
		return nil
	}

	keys := strings.Split(m[1], ", ")
	values := strings.Split(m[2], ", ")

	// values containing ", " make the split ambiguous
	if len(keys) != len(values) {
		return []string{m[1] + "=" + m[2]}
	}

	pairs := make([]string, len(keys))
	for i := range keys {
		pairs[i] = keys[i] + "=" + values[i]
	}

	return pairs
}

// reports a constraint violation against the offending column
func pgFieldErrors(pgErr *pgconn.PgError) Detail {
	field := pgErr.ColumnName
	if field == "" {
		field = pgErr.ConstraintName
	}

	if field == "" {
		return Message(pgErr.Message)
	}

	kind := map[string]string{
		pgNotNullViolation:     "required",
		pgForeignKeyViolation:  "reference",
		pgCheckViolation:       "check",
		pgStringDataRightTrunc: "maxlength",
	}[pgErr.Code]

	return FieldErrors{
		field: {Message: pgErr.Message, Kind: kind},
	}
}
