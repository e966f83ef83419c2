package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

// Kind classifies a failed call by how the client should react to it.
type Kind int

const (
	KindTransport Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

func kindOfStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// Error is returned by every Client method that fails. Status is 0 when no
// response was received or the request was rejected before sending.
type Error struct {
	Status  int
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("api %s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// FirstField returns the first field message in field-name order, or "".
func (e *Error) FirstField() string {
	names := make([]string, 0, len(e.Fields))
	for name, msgs := range e.Fields {
		if len(msgs) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return e.Fields[names[0]][0]
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// KindOf returns the kind of err; errors not produced by this package are KindTransport.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

func invalid(field, msg string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: msg,
		Fields:  map[string][]string{field: {msg}},
	}
}
