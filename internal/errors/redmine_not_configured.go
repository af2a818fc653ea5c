package errors

import "net/http"

var ErrRedmineNotConfigured = &Exception{
	Kind:       KindRemoteRejection,
	Message:    "Redmine not configured",
	StatusCode: http.StatusServiceUnavailable,
}
