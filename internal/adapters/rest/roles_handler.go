package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/authz/application"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

// RolesHandler handles role and permission registry endpoints
type RolesHandler struct {
	*BaseHandler
	service *application.RoleService
}

// NewRolesHandler creates a new roles handler
func NewRolesHandler(base *BaseHandler, service *application.RoleService) *RolesHandler {
	return &RolesHandler{
		BaseHandler: base,
		service:     service,
	}
}

type grantPayload struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Value   *int64 `json:"value,omitempty"`
}

type rolePayload struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rank        int            `json:"rank"`
	IsDefault   bool           `json:"is_default"`
	Grants      []grantPayload `json:"grants"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toRolePayload(role *domain.Role) rolePayload {
	grants := make([]grantPayload, 0, len(role.Grants))
	for _, name := range permission.All() {
		g, ok := role.Grants[name]
		if !ok {
			continue
		}
		grants = append(grants, grantPayload{
			Name:    string(g.Name),
			Enabled: g.Enabled,
			Major:   int(g.Major),
			Minor:   int(g.Minor),
			Value:   g.Value,
		})
	}
	return rolePayload{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Rank:        role.Rank,
		IsDefault:   role.IsDefault,
		Grants:      grants,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func toGrantParams(in []grantPayload) []application.GrantParams {
	out := make([]application.GrantParams, 0, len(in))
	for _, g := range in {
		out = append(out, application.GrantParams{
			Name:    permission.Name(g.Name),
			Enabled: g.Enabled,
			Major:   g.Major,
			Minor:   g.Minor,
			Value:   g.Value,
		})
	}
	return out
}

// ListPermissions returns the permission registry
func (h *RolesHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	type permissionPayload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	names := permission.All()
	payload := make([]permissionPayload, 0, len(names))
	for _, name := range names {
		payload = append(payload, permissionPayload{
			Name:        string(name),
			Description: permission.Description(name),
		})
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// ListRoles returns all roles
func (h *RolesHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]rolePayload, 0, len(roles))
	for _, role := range roles {
		payload = append(payload, toRolePayload(role))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// CreateRole creates a new role with its grant table
func (h *RolesHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Rank        int            `json:"rank"`
		Grants      []grantPayload `json:"grants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.service.CreateRole(r.Context(), actor, application.CreateRoleParams{
		Name:        req.Name,
		Description: req.Description,
		Rank:        req.Rank,
		Grants:      toGrantParams(req.Grants),
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toRolePayload(role), http.StatusCreated)
}

// GetRole returns one role
func (h *RolesHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "role id")
	if !ok {
		return
	}

	role, err := h.service.GetRole(r.Context(), roleID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toRolePayload(role), http.StatusOK)
}

// UpdateRole updates a role's descriptive fields
func (h *RolesHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	roleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "role id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Rank        *int    `json:"rank"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.service.UpdateRole(r.Context(), actor, roleID, req.Name, req.Description, req.Rank)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toRolePayload(role), http.StatusOK)
}

// ReplaceGrants swaps a role's grant table
func (h *RolesHandler) ReplaceGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	roleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "role id")
	if !ok {
		return
	}

	var req struct {
		Grants []grantPayload `json:"grants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.service.ReplaceGrants(r.Context(), actor, roleID, toGrantParams(req.Grants))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toRolePayload(role), http.StatusOK)
}

// SetDefaultRole flags a role as the default for new and orphaned members
func (h *RolesHandler) SetDefaultRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	roleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "role id")
	if !ok {
		return
	}

	if err := h.service.SetDefaultRole(r.Context(), actor, roleID); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRole deletes a role, reassigning its members to the default role
func (h *RolesHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	roleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "role id")
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), actor, roleID); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
