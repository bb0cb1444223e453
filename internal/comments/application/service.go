package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/comments/domain"
	"github.com/verdigris-dev/atrium/backend/internal/comments/ports"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/content/visibility"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// Error definitions for comment operations
var (
	ErrCommentNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeCommentNotFound,
		"comment not found",
		http.StatusNotFound,
	)
	ErrInvalidCommentData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid comment data",
		http.StatusBadRequest,
	)
	ErrArticleClosed = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"article does not accept comments",
		http.StatusForbidden,
	)
	ErrRepliesMuted = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"section does not accept new replies",
		http.StatusForbidden,
	)
)

// CommentsService handles comment business logic. Comments inherit the
// parent article's section, so delegated moderation covers the thread.
type CommentsService struct {
	repo       ports.CommentRepository
	articles   ports.ArticleSource
	sections   ports.SectionSource
	machine    *lifecycle.Machine
	evaluator  *visibility.Evaluator
	resolver   *authzapp.PermissionResolver
	delegation lifecycle.DelegationSource
	eventBus   *eventbus.Bus
	logger     logger.Logger
	sanitizer  *bluemonday.Policy
}

// NewCommentsService creates a new comments service.
func NewCommentsService(
	repo ports.CommentRepository,
	articleSource ports.ArticleSource,
	sectionSource ports.SectionSource,
	resolver *authzapp.PermissionResolver,
	delegation lifecycle.DelegationSource,
	policy *lifecycle.PolicyConfig,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *CommentsService {
	return &CommentsService{
		repo:       repo,
		articles:   articleSource,
		sections:   sectionSource,
		machine:    lifecycle.NewMachine(lifecycle.CommentKind, resolver, delegation, policy),
		evaluator:  visibility.NewEvaluator(lifecycle.CommentKind, resolver, delegation),
		resolver:   resolver,
		delegation: delegation,
		eventBus:   eventBus,
		logger:     logger,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// CreateCommentParams contains parameters for creating a comment.
type CreateCommentParams struct {
	ArticleID       uuid.UUID
	ParentID        *uuid.UUID
	Content         string
	RequestedStatus *domain.CommentStatus
}

// CreateComment creates a comment on an article; its initial status comes
// from the machine's creation gate, never from the request directly.
func (s *CommentsService) CreateComment(ctx context.Context, actor authz.Actor, params CreateCommentParams) (*domain.Comment, error) {
	article, err := s.getArticleRef(ctx, params.ArticleID)
	if err != nil {
		return nil, err
	}
	if article.Status != lifecycle.StatusActive && article.AuthorID != actor.ID {
		return nil, ErrArticleClosed
	}

	section, err := s.resolveSection(ctx, article.SectionID)
	if err != nil {
		return nil, err
	}
	if section != nil && section.Policy.ReplyMute {
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapSectionMute, false)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRepliesMuted
		}
	}

	var requested *lifecycle.Status
	if params.RequestedStatus != nil {
		if !params.RequestedStatus.IsValid() {
			return nil, lifecycle.ErrInvalidStatus
		}
		r := params.RequestedStatus.Lifecycle()
		requested = &r
	}

	status, err := s.machine.CreationStatus(ctx, actor, section, requested)
	if err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(
		s.sanitizer.Sanitize(params.Content),
		actor.ID,
		article.ID,
		params.ParentID,
		article.SectionID,
	)
	if err != nil {
		return nil, ErrInvalidCommentData.WithDetails(err.Error())
	}
	comment.Status = domain.FromLifecycle(status)
	comment.ReadLevel = article.ReadLevel

	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error(ctx, "failed to create comment", "error", err)
		return nil, fmt.Errorf("CommentsService.CreateComment: %w", err)
	}

	if comment.Status == domain.CommentActive {
		s.publishStatusChange(ctx, comment, actor.ID, comment.Status, 1)
	}
	s.logger.Info(ctx, "comment created",
		"comment_id", comment.ID,
		"article_id", article.ID,
		"author_id", actor.ID,
		"status", int(comment.Status),
	)
	return comment, nil
}

// UpdateCommentParams carries optional content and status changes.
type UpdateCommentParams struct {
	Content         *string
	RequestedStatus *domain.CommentStatus
}

// UpdateComment applies content edits and status transitions through the
// machine's update gate.
func (s *CommentsService) UpdateComment(ctx context.Context, actor authz.Actor, commentID uuid.UUID, params UpdateCommentParams) (*domain.Comment, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, comment.SectionID)
	if err != nil {
		return nil, err
	}

	contentChanged := params.Content != nil
	if contentChanged {
		if err := s.checkEditRights(ctx, actor, section, comment.AuthorID); err != nil {
			return nil, err
		}
	}

	var requested *lifecycle.Status
	if params.RequestedStatus != nil {
		if !params.RequestedStatus.IsValid() {
			return nil, lifecycle.ErrInvalidStatus
		}
		st := params.RequestedStatus.Lifecycle()
		requested = &st
	}

	transition, err := s.machine.UpdateStatus(ctx, actor, section, comment.AuthorID, comment.Status.Lifecycle(), requested, contentChanged)
	if err != nil {
		return nil, err
	}

	if contentChanged {
		if err := comment.UpdateContent(s.sanitizer.Sanitize(*params.Content), actor.ID); err != nil {
			return nil, ErrInvalidCommentData.WithDetails(err.Error())
		}
	}

	oldStatus := comment.Status
	if transition.Changed {
		comment.Status = domain.FromLifecycle(transition.To)
	}

	if err := s.repo.Update(ctx, comment); err != nil {
		s.logger.Error(ctx, "failed to update comment", "comment_id", commentID, "error", err)
		return nil, fmt.Errorf("CommentsService.UpdateComment: %w", err)
	}

	if transition.Changed {
		s.publishStatusChange(ctx, comment, actor.ID, oldStatus, transition.Delta)
	}
	return comment, nil
}

// GetComment retrieves one comment under the visibility rules.
func (s *CommentsService) GetComment(ctx context.Context, actor authz.Actor, commentID uuid.UUID) (*domain.Comment, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, comment.SectionID)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
		AuthorID:  comment.AuthorID,
		Status:    comment.Status.Lifecycle(),
		Privacy:   comment.Privacy,
		ReadLevel: comment.ReadLevel,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Visible {
		// Hidden and absent are deliberately indistinguishable.
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// ListArticleComments lists an article's comments the actor may see.
func (s *CommentsService) ListArticleComments(ctx context.Context, actor authz.Actor, articleID uuid.UUID) ([]*domain.Comment, error) {
	article, err := s.getArticleRef(ctx, articleID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, article.SectionID)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListByArticle(ctx, articleID)
	if err != nil {
		s.logger.Error(ctx, "failed to list comments", "article_id", articleID, "error", err)
		return nil, fmt.Errorf("CommentsService.ListArticleComments: %w", err)
	}

	visible := make([]*domain.Comment, 0, len(all))
	for _, comment := range all {
		decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
			AuthorID:  comment.AuthorID,
			Status:    comment.Status.Lifecycle(),
			Privacy:   comment.Privacy,
			ReadLevel: comment.ReadLevel,
		})
		if err != nil {
			return nil, err
		}
		if decision.Visible {
			visible = append(visible, comment)
		}
	}
	return visible, nil
}

// DeleteComments deletes a batch of comments. Each id is evaluated
// independently; one failure never aborts the rest.
func (s *CommentsService) DeleteComments(ctx context.Context, actor authz.Actor, ids []uuid.UUID, force bool) []lifecycle.BatchResult {
	results := make([]lifecycle.BatchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, lifecycle.BatchResult{ID: id, Outcome: s.deleteOne(ctx, actor, id, force)})
	}
	return results
}

func (s *CommentsService) deleteOne(ctx context.Context, actor authz.Actor, id uuid.UUID, force bool) lifecycle.BatchOutcome {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}
	section, err := s.resolveSection(ctx, comment.SectionID)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}

	allowed, err := s.machine.CanDelete(ctx, actor, section, comment.AuthorID, force)
	if err != nil || !allowed {
		return lifecycle.OutcomePermissionDenied
	}

	if force {
		delta := lifecycle.ActiveDelta(comment.Status.Lifecycle(), lifecycle.StatusCancel)
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Error(ctx, "failed to delete comment", "comment_id", id, "error", err)
			return lifecycle.OutcomeNotFound
		}
		if delta != 0 {
			s.publishStatusChange(ctx, comment, actor.ID, comment.Status, delta)
		}
		s.logger.Info(ctx, "comment deleted", "comment_id", id, "actor_id", actor.ID)
		return lifecycle.OutcomeSuccess
	}

	oldStatus := comment.Status
	if oldStatus == domain.CommentCancel {
		return lifecycle.OutcomeSuccess
	}
	delta := lifecycle.ActiveDelta(oldStatus.Lifecycle(), lifecycle.StatusCancel)
	comment.Status = domain.CommentCancel
	if err := s.repo.Update(ctx, comment); err != nil {
		s.logger.Error(ctx, "failed to cancel comment", "comment_id", id, "error", err)
		return lifecycle.OutcomeNotFound
	}
	s.publishStatusChange(ctx, comment, actor.ID, oldStatus, delta)
	return lifecycle.OutcomeSuccess
}

func (s *CommentsService) publishStatusChange(ctx context.Context, comment *domain.Comment, actorID uuid.UUID, old domain.CommentStatus, delta int64) {
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.CommentStatusChangedTopic,
		Payload: events.CommentStatusChangedEvent{
			CommentID:   comment.ID,
			ArticleID:   comment.ArticleID,
			ActorID:     actorID,
			OldStatus:   int(old),
			NewStatus:   int(comment.Status),
			ActiveDelta: delta,
			OccurredAt:  time.Now(),
		},
	})
}

// checkEditRights allows content edits by the author, by LEVEL_10 edit
// grant holders, or by delegated moderators holding the audit capability.
func (s *CommentsService) checkEditRights(ctx context.Context, actor authz.Actor, section *sections.Section, authorID uuid.UUID) error {
	if actor.ID == authorID {
		return nil
	}
	if s.resolver.MajorGE(actor, s.machine.Kind().EditPerm, authz.Level10) {
		return nil
	}
	if section != nil {
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapCommentAudit, false)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return authzapp.ErrPermissionDenied
}

func (s *CommentsService) resolveSection(ctx context.Context, sectionID *uuid.UUID) (*sections.Section, error) {
	if sectionID == nil {
		return nil, nil
	}
	return s.sections.GetSection(ctx, *sectionID)
}

func (s *CommentsService) getArticleRef(ctx context.Context, id uuid.UUID) (*ports.ArticleRef, error) {
	article, err := s.articles.GetArticleRef(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CommentsService.getArticleRef: %w", err)
	}
	if article == nil {
		return nil, ErrCommentNotFound.WithDetails("parent article not found")
	}
	return article, nil
}

func (s *CommentsService) getComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CommentsService.getComment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
