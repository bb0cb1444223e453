package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/articles/application"
	"github.com/verdigris-dev/atrium/backend/internal/articles/domain"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
)

// ArticlesHandler handles article endpoints
type ArticlesHandler struct {
	*BaseHandler
	service *application.ArticlesService
}

// NewArticlesHandler creates a new articles handler
func NewArticlesHandler(base *BaseHandler, service *application.ArticlesService) *ArticlesHandler {
	return &ArticlesHandler{
		BaseHandler: base,
		service:     service,
	}
}

type articlePayload struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content"`
	AuthorID     uuid.UUID  `json:"author_id"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	Status       int        `json:"status"`
	Privacy      int        `json:"privacy"`
	ReadLevel    int        `json:"read_level"`
	ReadCount    int64      `json:"read_count"`
	CommentCount int64      `json:"comment_count"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
	EditorID     *uuid.UUID `json:"editor_id,omitempty"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type batchResultPayload struct {
	ID      uuid.UUID `json:"id"`
	Outcome string    `json:"outcome"`
}

func toArticlePayload(article *domain.Article) articlePayload {
	return articlePayload{
		ID:           article.ID,
		Title:        article.Title,
		Slug:         article.Slug,
		Content:      article.Content,
		AuthorID:     article.AuthorID,
		SectionID:    article.SectionID,
		Status:       int(article.Status),
		Privacy:      int(article.Privacy),
		ReadLevel:    article.ReadLevel,
		ReadCount:    article.ReadCount,
		CommentCount: article.CommentCount,
		LikeCount:    article.LikeCount,
		DislikeCount: article.DislikeCount,
		EditorID:     article.EditorID,
		EditedAt:     article.EditedAt,
		CreatedAt:    article.CreatedAt,
		UpdatedAt:    article.UpdatedAt,
	}
}

func toBatchResultPayload(results []lifecycle.BatchResult) []batchResultPayload {
	payload := make([]batchResultPayload, 0, len(results))
	for _, res := range results {
		payload = append(payload, batchResultPayload{ID: res.ID, Outcome: string(res.Outcome)})
	}
	return payload
}

// CreateArticle creates an article; the initial status comes from the
// creation gate, not from the request
func (h *ArticlesHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		SectionID *uuid.UUID `json:"section_id"`
		Privacy   int        `json:"privacy"`
		ReadLevel int        `json:"read_level"`
		Status    *int       `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.CreateArticleParams{
		Title:     req.Title,
		Content:   req.Content,
		SectionID: req.SectionID,
		Privacy:   lifecycle.Privacy(req.Privacy),
		ReadLevel: req.ReadLevel,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	article, err := h.service.CreateArticle(r.Context(), actor, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toArticlePayload(article), http.StatusCreated)
}

// GetArticle returns one article if it is visible to the caller
func (h *ArticlesHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	articleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "article id")
	if !ok {
		return
	}

	article, err := h.service.GetArticle(r.Context(), actor, articleID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toArticlePayload(article), http.StatusOK)
}

// GetArticleBySlug returns one article addressed by slug
func (h *ArticlesHandler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.WriteJSONError(w, r, "invalid_request", "Invalid slug", http.StatusBadRequest)
		return
	}

	article, err := h.service.GetArticleBySlug(r.Context(), actor, slug)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toArticlePayload(article), http.StatusOK)
}

// ListSectionArticles returns the articles of a section visible to the caller
func (h *ArticlesHandler) ListSectionArticles(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	sectionID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "section id")
	if !ok {
		return
	}

	articles, err := h.service.ListSectionArticles(r.Context(), actor, sectionID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]articlePayload, 0, len(articles))
	for _, article := range articles {
		payload = append(payload, toArticlePayload(article))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// UpdateArticle applies content edits and status transitions
func (h *ArticlesHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	articleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "article id")
	if !ok {
		return
	}

	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Privacy   *int    `json:"privacy"`
		ReadLevel *int    `json:"read_level"`
		Status    *int    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.UpdateArticleParams{
		Title:     req.Title,
		Content:   req.Content,
		ReadLevel: req.ReadLevel,
	}
	if req.Privacy != nil {
		privacy := lifecycle.Privacy(*req.Privacy)
		params.Privacy = &privacy
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	article, err := h.service.UpdateArticle(r.Context(), actor, articleID, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toArticlePayload(article), http.StatusOK)
}

// DeleteArticles deletes a batch of articles, reporting a per-item outcome
func (h *ArticlesHandler) DeleteArticles(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		IDs   []uuid.UUID `json:"ids"`
		Force bool        `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		h.WriteJSONError(w, r, "validation_error", "No article ids provided", http.StatusBadRequest)
		return
	}

	results := h.service.DeleteArticles(r.Context(), actor, req.IDs, req.Force)
	h.WriteJSONResponse(w, r, toBatchResultPayload(results), http.StatusOK)
}
