package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/comments/application"
	"github.com/verdigris-dev/atrium/backend/internal/comments/domain"
)

// CommentsHandler handles comment endpoints
type CommentsHandler struct {
	*BaseHandler
	service *application.CommentsService
}

// NewCommentsHandler creates a new comments handler
func NewCommentsHandler(base *BaseHandler, service *application.CommentsService) *CommentsHandler {
	return &CommentsHandler{
		BaseHandler: base,
		service:     service,
	}
}

type commentPayload struct {
	ID           uuid.UUID  `json:"id"`
	ArticleID    uuid.UUID  `json:"article_id"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Content      string     `json:"content"`
	AuthorID     uuid.UUID  `json:"author_id"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	Status       int        `json:"status"`
	Privacy      int        `json:"privacy"`
	ReadLevel    int        `json:"read_level"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
	EditorID     *uuid.UUID `json:"editor_id,omitempty"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toCommentPayload(comment *domain.Comment) commentPayload {
	return commentPayload{
		ID:           comment.ID,
		ArticleID:    comment.ArticleID,
		ParentID:     comment.ParentID,
		Content:      comment.Content,
		AuthorID:     comment.AuthorID,
		SectionID:    comment.SectionID,
		Status:       int(comment.Status),
		Privacy:      int(comment.Privacy),
		ReadLevel:    comment.ReadLevel,
		LikeCount:    comment.LikeCount,
		DislikeCount: comment.DislikeCount,
		EditorID:     comment.EditorID,
		EditedAt:     comment.EditedAt,
		CreatedAt:    comment.CreatedAt,
		UpdatedAt:    comment.UpdatedAt,
	}
}

// CreateComment creates a comment on an article
func (h *CommentsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	articleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "article id")
	if !ok {
		return
	}

	var req struct {
		ParentID *uuid.UUID `json:"parent_id"`
		Content  string     `json:"content"`
		Status   *int       `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.CreateCommentParams{
		ArticleID: articleID,
		ParentID:  req.ParentID,
		Content:   req.Content,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	comment, err := h.service.CreateComment(r.Context(), actor, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toCommentPayload(comment), http.StatusCreated)
}

// GetComment returns one comment if it is visible to the caller
func (h *CommentsHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	commentID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "comment id")
	if !ok {
		return
	}

	comment, err := h.service.GetComment(r.Context(), actor, commentID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toCommentPayload(comment), http.StatusOK)
}

// ListArticleComments returns an article's comments visible to the caller
func (h *CommentsHandler) ListArticleComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	articleID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "article id")
	if !ok {
		return
	}

	comments, err := h.service.ListArticleComments(r.Context(), actor, articleID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]commentPayload, 0, len(comments))
	for _, comment := range comments {
		payload = append(payload, toCommentPayload(comment))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// UpdateComment applies content edits and status transitions
func (h *CommentsHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	commentID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "comment id")
	if !ok {
		return
	}

	var req struct {
		Content *string `json:"content"`
		Status  *int    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.UpdateCommentParams{Content: req.Content}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	comment, err := h.service.UpdateComment(r.Context(), actor, commentID, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toCommentPayload(comment), http.StatusOK)
}

// DeleteComments deletes a batch of comments, reporting a per-item outcome
func (h *CommentsHandler) DeleteComments(w http.ResponseWriter, r *http.Request) {
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
		h.WriteJSONError(w, r, "validation_error", "No comment ids provided", http.StatusBadRequest)
		return
	}

	results := h.service.DeleteComments(r.Context(), actor, req.IDs, req.Force)
	h.WriteJSONResponse(w, r, toBatchResultPayload(results), http.StatusOK)
}
