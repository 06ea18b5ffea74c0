package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API-visible failure.
type Kind int

const (
	NotFound Kind = iota
	Validation
	ConflictData
	OperationFailed
	Duplicate
	InvalidSort
	InvalidDateTime
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is match any error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps an error to the response status code. Anything that is not
// an application error is treated as an internal failure.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case NotFound:
		return http.StatusNotFound
	case Validation, InvalidSort, InvalidDateTime:
		return http.StatusBadRequest
	case ConflictData, OperationFailed, Duplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
