// Package apperr defines the error kinds the management flows report and the
// HTTP status each one maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindForbidden          Kind = "forbidden"
	KindUnauthenticated    Kind = "unauthenticated"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal_error"
)

// Status returns the HTTP status for k. Flows report denied actions with 401;
// only the unauthorized fallback route answers 403.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials, KindForbidden, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fields maps an input field name to its failure messages, in rule order.
type Fields map[string][]string

func (f Fields) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f Fields) Has(field string) bool {
	return len(f[field]) > 0
}

func (f Fields) count() int {
	n := 0
	for _, msgs := range f {
		n += len(msgs)
	}
	return n
}

type Error struct {
	Kind    Kind
	Message string
	Fields  Fields
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Server Error", Err: err}
}

// Validation builds a validation error whose message is the first field
// message, suffixed with the number of remaining messages.
func Validation(fields Fields, order ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: summarize(fields, order),
		Fields:  fields,
	}
}

func summarize(fields Fields, order []string) string {
	keys := append([]string(nil), order...)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	first := ""
	for _, k := range keys {
		if msgs := fields[k]; len(msgs) > 0 {
			first = msgs[0]
			break
		}
	}

	switch more := fields.count() - 1; {
	case more <= 0:
		return first
	case more == 1:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, more)
	}
}

// As extracts an *Error from err. Anything else is reported as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
