package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/sections/application"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// SectionsHandler handles section management endpoints
type SectionsHandler struct {
	*BaseHandler
	service *application.SectionsService
}

// NewSectionsHandler creates a new sections handler
func NewSectionsHandler(base *BaseHandler, service *application.SectionsService) *SectionsHandler {
	return &SectionsHandler{
		BaseHandler: base,
		service:     service,
	}
}

type policyPayload struct {
	Capabilities      map[string]int `json:"capabilities"`
	AutoAudit         bool           `json:"auto_audit"`
	ArticleMute       bool           `json:"article_mute"`
	ReplyMute         bool           `json:"reply_mute"`
	MaxArticles       int            `json:"max_articles"`
	MaxArticlesOneDay int            `json:"max_articles_one_day"`
}

type sectionPayload struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Status      int           `json:"status"`
	ReadLevel   int           `json:"read_level"`
	Policy      policyPayload `json:"policy"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type managersPayload struct {
	OwnerID      uuid.UUID   `json:"owner_id"`
	ModeratorIDs []uuid.UUID `json:"moderator_ids"`
	AssistantIDs []uuid.UUID `json:"assistant_ids"`
}

func toSectionPayload(section *domain.Section) sectionPayload {
	caps := make(map[string]int, len(section.Policy.Capabilities))
	for cap, tier := range section.Policy.Capabilities {
		caps[string(cap)] = int(tier)
	}
	return sectionPayload{
		ID:          section.ID,
		Name:        section.Name,
		Description: section.Description,
		OwnerID:     section.OwnerID,
		Status:      int(section.Status),
		ReadLevel:   section.ReadLevel,
		Policy: policyPayload{
			Capabilities:      caps,
			AutoAudit:         section.Policy.AutoAudit,
			ArticleMute:       section.Policy.ArticleMute,
			ReplyMute:         section.Policy.ReplyMute,
			MaxArticles:       section.Policy.MaxArticles,
			MaxArticlesOneDay: section.Policy.MaxArticlesOneDay,
		},
		CreatedAt: section.CreatedAt,
		UpdatedAt: section.UpdatedAt,
	}
}

func toManagersPayload(managers domain.Managers) managersPayload {
	return managersPayload{
		OwnerID:      managers.OwnerID,
		ModeratorIDs: managers.ModeratorIDs,
		AssistantIDs: managers.AssistantIDs,
	}
}

// ListSections returns all sections
func (h *SectionsHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.ListSections(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]sectionPayload, 0, len(sections))
	for _, section := range sections {
		payload = append(payload, toSectionPayload(section))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// CreateSection creates a new section owned by the caller
func (h *SectionsHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ReadLevel   int    `json:"read_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	section, err := h.service.CreateSection(r.Context(), actor, application.CreateSectionParams{
		Name:        req.Name,
		Description: req.Description,
		ReadLevel:   req.ReadLevel,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toSectionPayload(section), http.StatusCreated)
}

// GetSection returns one section
func (h *SectionsHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	section, err := h.service.GetSection(r.Context(), sectionID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toSectionPayload(section), http.StatusOK)
}

// UpdateSection applies structural changes to a section
func (h *SectionsHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ReadLevel   *int    `json:"read_level"`
		Status      *int    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.UpdateSectionParams{
		Name:        req.Name,
		Description: req.Description,
		ReadLevel:   req.ReadLevel,
	}
	if req.Status != nil {
		status := domain.SectionStatus(*req.Status)
		params.Status = &status
	}

	section, err := h.service.UpdateSection(r.Context(), actor, sectionID, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toSectionPayload(section), http.StatusOK)
}

// UpdatePolicy merges capability and scalar changes into a section's policy
func (h *SectionsHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	var req struct {
		Capabilities      map[string]int `json:"capabilities"`
		AutoAudit         *bool          `json:"auto_audit"`
		ArticleMute       *bool          `json:"article_mute"`
		ReplyMute         *bool          `json:"reply_mute"`
		MaxArticles       *int           `json:"max_articles"`
		MaxArticlesOneDay *int           `json:"max_articles_one_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	caps := make(map[domain.Capability]domain.Tier, len(req.Capabilities))
	for name, tier := range req.Capabilities {
		caps[domain.Capability(name)] = domain.Tier(tier)
	}

	section, err := h.service.UpdatePolicy(r.Context(), actor, sectionID, application.UpdatePolicyParams{
		Capabilities:      caps,
		AutoAudit:         req.AutoAudit,
		ArticleMute:       req.ArticleMute,
		ReplyMute:         req.ReplyMute,
		MaxArticles:       req.MaxArticles,
		MaxArticlesOneDay: req.MaxArticlesOneDay,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toSectionPayload(section), http.StatusOK)
}

// SetModerators replaces a section's moderator set
func (h *SectionsHandler) SetModerators(w http.ResponseWriter, r *http.Request) {
	h.replaceManagers(w, r, h.service.SetModerators)
}

// SetAssistants replaces a section's assistant set
func (h *SectionsHandler) SetAssistants(w http.ResponseWriter, r *http.Request) {
	h.replaceManagers(w, r, h.service.SetAssistants)
}

func (h *SectionsHandler) replaceManagers(
	w http.ResponseWriter,
	r *http.Request,
	replace func(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, ids []uuid.UUID) (domain.Managers, error),
) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	managers, err := replace(r.Context(), actor, sectionID, req.IDs)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toManagersPayload(managers), http.StatusOK)
}

// TransferOwner hands a section to a new owner
func (h *SectionsHandler) TransferOwner(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	var req struct {
		NewOwnerID uuid.UUID `json:"new_owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	managers, err := h.service.TransferOwner(r.Context(), actor, sectionID, req.NewOwnerID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toManagersPayload(managers), http.StatusOK)
}

// DeleteSection removes a section
func (h *SectionsHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	if err := h.service.DeleteSection(r.Context(), actor, sectionID); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
