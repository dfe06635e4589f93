// Package errs normalizes heterogeneous backend failures into a small
// taxonomy of actionable kinds and user-safe API errors.
package errs

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure's nature, independent of transport.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindStorage    Kind = "storage"
	KindServer     Kind = "server"
	KindUnknown    Kind = "unknown"
)

// APIError is the uniform error record returned to callers. Message is
// always safe to display verbatim; Code is stable and machine-matchable.
type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldErrors is a structured validation failure. Values are either a
// string message or a nested map[string]any for sub-objects.
type FieldErrors struct {
	Fields map[string]any
}

func (e *FieldErrors) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return fmt.Sprintf("validation failed: %s", strings.Join(paths, ", "))
}

// Flatten collapses nested field errors into a flat mapping from dotted
// path to message.
func (e *FieldErrors) Flatten() map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", e.Fields)
	return out
}

func flattenInto(out map[string]string, prefix string, fields map[string]any) {
	for key, val := range fields {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := val.(type) {
		case string:
			out[path] = v
		case map[string]any:
			flattenInto(out, path, v)
		default:
			out[path] = fmt.Sprint(v)
		}
	}
}

// APIStatusError is a raw failure from an HTTP-fronted backend collaborator.
// Code carries the application-level error code when the backend sent one
// (e.g. PostgREST "PGRST116").
type APIStatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}
