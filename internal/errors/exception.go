package errors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNetwork
	KindRemoteRejection
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindRemoteRejection:
		return "remote_rejection"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *Exception) Unwrap() error {
	return e.Err
}

func Validation(message string) error {
	return &Exception{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// Network marks a call that never got an answer from the other side.
func Network(err error) error {
	return &Exception{
		Kind:       KindNetwork,
		Message:    "backend unreachable",
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

// Rejected carries a non-success answer, message kept verbatim.
func Rejected(statusCode int, message string) error {
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusBadGateway
	}
	return &Exception{
		Kind:       KindRemoteRejection,
		Message:    message,
		StatusCode: statusCode,
	}
}

func IsKind(err error, kind Kind) bool {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the text meant for the user.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
