package errors

import "net/http"

var ErrTaskIDRequired = &Exception{
	Kind:       KindValidation,
	Message:    "task id is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidPayload = &Exception{
	Kind:       KindValidation,
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}
