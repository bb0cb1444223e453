package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/auth"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// BaseHandler contains common dependencies and helper methods for all handlers
type BaseHandler struct {
	logger logger.Logger
}

// NewBaseHandler creates a new base handler with common dependencies
func NewBaseHandler(logger logger.Logger) *BaseHandler {
	return &BaseHandler{
		logger: logger,
	}
}

// errorResponse is the wire shape of every error this API returns
type errorResponse struct {
	Error        string `json:"error"`
	BusinessCode string `json:"business_code,omitempty"`
	Message      string `json:"message"`
	Context      any    `json:"context,omitempty"`
}

// WriteJSONError writes a JSON error response
func (h *BaseHandler) WriteJSONError(w http.ResponseWriter, r *http.Request, code string, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := errorResponse{
		Error:   code,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error(r.Context(), "failed to encode error response",
			"error", err,
			"error_code", code,
			"status_code", statusCode,
		)
	}
}

// WriteJSONResponse writes a successful JSON response
func (h *BaseHandler) WriteJSONResponse(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(r.Context(), "failed to encode response",
			"error", err,
			"status_code", statusCode,
		)
	}
}

// ParseUUID parses a path or query parameter as a UUID, writing a 400 and
// reporting false when it is malformed
func (h *BaseHandler) ParseUUID(w http.ResponseWriter, r *http.Request, value string, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		h.WriteJSONError(w, r, "invalid_request", "Invalid "+paramName, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Actor extracts the authenticated actor placed on the context by the auth
// middleware. Handlers are only mounted behind it, so absence is a
// programming error.
func (h *BaseHandler) Actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		h.WriteJSONError(w, r, "unauthorized", "Missing authenticated actor", http.StatusUnauthorized)
		return authz.Actor{}, false
	}
	return actor, true
}

// HandleError maps application errors to HTTP responses. AppErrors carry
// their own status and codes; anything else is an internal server error.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error(r.Context(), "unhandled error", "error", err)
		h.writeAppError(w, r, &apperror.AppError{
			Code:       apperror.CodeInternalError,
			Message:    "An unexpected error occurred",
			HTTPStatus: http.StatusInternalServerError,
		})
		return
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "internal error", "error", err)
	}
	h.writeAppError(w, r, appErr)
}

func (h *BaseHandler) writeAppError(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)

	resp := errorResponse{
		Error:        string(appErr.Code),
		BusinessCode: string(appErr.BusinessCode),
		Message:      appErr.Message,
		Context:      appErr.Details,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error(r.Context(), "failed to encode error response", "error", err)
	}
}
