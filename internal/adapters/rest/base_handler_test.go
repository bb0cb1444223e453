package rest_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/auth"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rest"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

func newBaseHandler() *rest.BaseHandler {
	return rest.NewBaseHandler(logger.NewBootstrapLogger())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteJSONError(t *testing.T) {
	h := newBaseHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	rec := httptest.NewRecorder()

	h.WriteJSONError(rec, req, "validation_error", "Invalid request body", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, "Invalid request body", body["message"])
	assert.NotContains(t, body, "business_code")
}

func TestWriteJSONResponse(t *testing.T) {
	h := newBaseHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles", nil)
	rec := httptest.NewRecorder()

	h.WriteJSONResponse(rec, req, map[string]string{"name": "member"}, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "member", body["name"])
}

func TestHandleError_AppError(t *testing.T) {
	h := newBaseHandler()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantBiz    string
	}{
		{
			name: "not found with business code",
			err: apperror.New(apperror.CodeNotFound, apperror.BusinessCodeArticleNotFound,
				"article not found", http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "NOT_FOUND",
			wantBiz:    "ARTICLE_NOT_FOUND",
		},
		{
			name: "permission denied",
			err: apperror.New(apperror.CodeForbidden, apperror.BusinessCodePermissionDenied,
				"permission denied", http.StatusForbidden),
			wantStatus: http.StatusForbidden,
			wantError:  "FORBIDDEN",
			wantBiz:    "PERMISSION_DENIED",
		},
		{
			name: "wrapped app error keeps its codes",
			err: apperror.Wrap(errors.New("pg: connection reset"),
				apperror.CodeInternalError, apperror.BusinessCodeGeneral,
				"failed to load section", http.StatusInternalServerError),
			wantStatus: http.StatusInternalServerError,
			wantError:  "INTERNAL_ERROR",
			wantBiz:    "GENERAL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tc.wantError, body["error"])
			assert.Equal(t, tc.wantBiz, body["business_code"])
		})
	}
}

func TestHandleError_DetailsPassThrough(t *testing.T) {
	h := newBaseHandler()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sections/x/policy", nil)
	rec := httptest.NewRecorder()

	err := apperror.New(apperror.CodeValidationFailed, apperror.BusinessCodeInvalidFormat,
		"invalid section data", http.StatusBadRequest).
		WithDetails(map[string]string{"capability": "set_status"})
	h.HandleError(rec, req, err)

	body := decodeBody(t, rec)
	ctx, ok := body["context"].(map[string]any)
	require.True(t, ok, "details should surface under context")
	assert.Equal(t, "set_status", ctx["capability"])
}

func TestHandleError_UnknownErrorIsOpaque(t *testing.T) {
	h := newBaseHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, errors.New("pq: deadlock detected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	// Internal detail never leaks to the client.
	assert.NotContains(t, body["message"], "deadlock")
}

func TestParseUUID(t *testing.T) {
	h := newBaseHandler()

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/x", nil)
		rec := httptest.NewRecorder()

		want := uuid.New()
		got, ok := h.ParseUUID(rec, req, want.String(), "role id")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/x", nil)
		rec := httptest.NewRecorder()

		got, ok := h.ParseUUID(rec, req, "not-a-uuid", "role id")
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "invalid_request", body["error"])
		assert.Equal(t, "Invalid role id", body["message"])
	})
}

func TestActor(t *testing.T) {
	h := newBaseHandler()

	t.Run("present on context", func(t *testing.T) {
		actor := authz.Actor{ID: uuid.New()}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
		req = req.WithContext(auth.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		got, ok := h.Actor(rec, req)
		require.True(t, ok)
		assert.Equal(t, actor.ID, got.ID)
	})

	t.Run("missing yields unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
		rec := httptest.NewRecorder()

		_, ok := h.Actor(rec, req)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "unauthorized", body["error"])
	})
}
