package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteJSONError(t *testing.T) {
	cases := []struct {
		name    string
		code    string
		message string
		status  int
	}{
		{"unauthorized", ErrorCodeUnauthorized, "Authentication required", http.StatusUnauthorized},
		{"token expired", ErrorCodeTokenExpired, "Token has expired", http.StatusUnauthorized},
		{"not found", ErrorCodeNotFound, "Resource not found", http.StatusNotFound},
		{"method not allowed", ErrorCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteJSONError(rec, tc.code, tc.message, tc.status)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decode(t, rec)
			assert.Equal(t, tc.code, body["error"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestWriteJSONErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONErrorWithDetails(rec, ErrorCodeValidationError, "Validation failed",
		http.StatusBadRequest, map[string]any{"field": "read_level", "min": float64(0)})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, "read_level", body["field"])
	assert.Equal(t, float64(0), body["min"])
}
