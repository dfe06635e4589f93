package errs

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// storageMessages maps known backend storage codes to user-safe
// message/code pairs. Unmatched codes pass through unchanged.
var storageMessages = map[string]APIError{
	"23505":    {Message: "already exists", Code: "DUPLICATE_ENTRY"},
	"23503":    {Message: "integrity constraint violation", Code: "FOREIGN_KEY_VIOLATION"},
	"42P01":    {Message: "not found", Code: "TABLE_NOT_FOUND"},
	"42501":    {Message: "permission denied", Code: "INSUFFICIENT_PRIVILEGE"},
	"PGRST116": {Message: "record not found", Code: "NOT_FOUND"},
}

// kindMessages are the fixed user-safe responses for kinds whose raw error
// text must never reach a caller.
var kindMessages = map[Kind]APIError{
	KindAuth:       {Message: "authentication required", Code: "UNAUTHENTICATED"},
	KindPermission: {Message: "permission denied", Code: "FORBIDDEN"},
	KindNetwork:    {Message: "network unavailable, please try again", Code: "NETWORK_ERROR"},
	KindServer:     {Message: "internal server error", Code: "INTERNAL_ERROR"},
	KindUnknown:    {Message: "an unexpected error occurred", Code: "UNKNOWN_ERROR"},
}

// Format turns a classified raw failure into a uniform APIError. It never
// fails. Validation and Storage kinds surface their structured,
// pre-sanitized detail; every other kind gets a fixed message and the raw
// error is logged rather than echoed.
func Format(err error, kind Kind) *APIError {
	switch kind {
	case KindValidation:
		return formatValidation(err)
	case KindStorage:
		return formatStorage(err)
	default:
		out, ok := kindMessages[kind]
		if !ok {
			out = kindMessages[KindUnknown]
		}
		if err != nil {
			slog.Debug("formatted internal error", "kind", string(kind), "error", err)
		}
		return &out
	}
}

func formatValidation(err error) *APIError {
	out := &APIError{Message: "validation failed", Code: "VALIDATION_ERROR"}

	var fieldErrs *FieldErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}

	flat := fieldErrs.Flatten()
	out.Details = flat
	if len(flat) == 1 {
		for path := range flat {
			out.Field = path
		}
	}
	return out
}

func formatStorage(err error) *APIError {
	code, message := storageCode(err)
	if mapped, ok := storageMessages[code]; ok {
		return &APIError{Message: mapped.Message, Code: mapped.Code}
	}
	// Unknown storage code: the driver message is pre-sanitized detail and
	// passes through unchanged.
	return &APIError{Message: message, Code: code}
}

func storageCode(err error) (code, message string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message
	}
	var apiErr *APIStatusError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}
	if err != nil {
		return "STORAGE_ERROR", err.Error()
	}
	return "STORAGE_ERROR", "storage operation failed"
}
