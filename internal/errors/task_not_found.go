package errors

import "net/http"

var ErrTaskNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrProfileNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "profile not found",
	StatusCode: http.StatusNotFound,
}

var ErrHistoryNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "history entry not found",
	StatusCode: http.StatusNotFound,
}
