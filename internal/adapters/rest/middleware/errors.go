package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes emitted before a request reaches a handler. Lower snake case,
// matching the BaseHandler error envelope.
const (
	ErrorCodeUnauthorized        = "unauthorized"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeMethodNotAllowed    = "method_not_allowed"
	ErrorCodeValidationError     = "validation_error"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeTokenExpired        = "token_expired"
	ErrorCodeInternalServerError = "internal_server_error"
)

// WriteJSONError writes the standard error envelope from middleware, where
// no BaseHandler is in scope.
func WriteJSONError(w http.ResponseWriter, code, message string, status int) {
	writeEnvelope(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}

// WriteJSONErrorWithDetails merges extra key/value pairs into the envelope.
func WriteJSONErrorWithDetails(w http.ResponseWriter, code, message string, status int, details map[string]any) {
	envelope := map[string]any{
		"error":   code,
		"message": message,
	}
	for k, v := range details {
		envelope[k] = v
	}
	writeEnvelope(w, status, envelope)
}

func writeEnvelope(w http.ResponseWriter, status int, envelope map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are unrecoverable mid-error-response.
	_ = json.NewEncoder(w).Encode(envelope)
}
