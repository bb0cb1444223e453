package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/verdigris-dev/atrium/backend/internal/articles/domain"
	"github.com/verdigris-dev/atrium/backend/internal/articles/ports"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/content/visibility"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	"github.com/verdigris-dev/atrium/backend/internal/platform/validator"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// Error definitions for article operations
var (
	ErrArticleNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeArticleNotFound,
		"article not found",
		http.StatusNotFound,
	)
	ErrInvalidArticleData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid article data",
		http.StatusBadRequest,
	)
	ErrSectionMuted = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"section does not accept new articles",
		http.StatusForbidden,
	)
	ErrArticleQuota = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"article quota for this section exhausted",
		http.StatusForbidden,
	)
)

// ArticlesService handles article business logic: creation and update gates
// through the status machine, reads through the visibility evaluator.
type ArticlesService struct {
	repo       ports.ArticleRepository
	sections   ports.SectionSource
	machine    *lifecycle.Machine
	evaluator  *visibility.Evaluator
	resolver   *authzapp.PermissionResolver
	delegation lifecycle.DelegationSource
	counters   counters.Store
	eventBus   *eventbus.Bus
	logger     logger.Logger
	sanitizer  *bluemonday.Policy
}

// NewArticlesService creates a new articles service. The status machine and
// visibility evaluator are built here so each content kind carries its own.
func NewArticlesService(
	repo ports.ArticleRepository,
	sectionSource ports.SectionSource,
	resolver *authzapp.PermissionResolver,
	delegation lifecycle.DelegationSource,
	policy *lifecycle.PolicyConfig,
	counterStore counters.Store,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *ArticlesService {
	return &ArticlesService{
		repo:       repo,
		sections:   sectionSource,
		machine:    lifecycle.NewMachine(lifecycle.ArticleKind, resolver, delegation, policy),
		evaluator:  visibility.NewEvaluator(lifecycle.ArticleKind, resolver, delegation),
		resolver:   resolver,
		delegation: delegation,
		counters:   counterStore,
		eventBus:   eventBus,
		logger:     logger,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// CreateArticleParams contains parameters for creating an article.
type CreateArticleParams struct {
	Title           string
	Content         string
	SectionID       *uuid.UUID
	Privacy         lifecycle.Privacy
	ReadLevel       int
	RequestedStatus *domain.ArticleStatus
}

// CreateArticle creates an article; its initial status comes from the
// machine's creation gate, never from the request directly.
func (s *ArticlesService) CreateArticle(ctx context.Context, actor authz.Actor, params CreateArticleParams) (*domain.Article, error) {
	section, err := s.resolveSection(ctx, params.SectionID)
	if err != nil {
		return nil, err
	}

	if section != nil {
		if err := s.checkSectionIntake(ctx, actor, section); err != nil {
			return nil, err
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

	article, err := domain.NewArticle(
		params.Title,
		s.sanitizer.Sanitize(params.Content),
		actor.ID,
		params.SectionID,
		params.Privacy,
		params.ReadLevel,
	)
	if err != nil {
		return nil, ErrInvalidArticleData.WithDetails(err.Error())
	}
	article.Status = domain.FromLifecycle(status)

	slug, err := s.ensureUniqueSlug(ctx, article.Slug, nil)
	if err != nil {
		return nil, err
	}
	if slug != article.Slug {
		if err := article.UpdateSlug(slug); err != nil {
			return nil, ErrInvalidArticleData.WithDetails(err.Error())
		}
	}

	if err := s.repo.Create(ctx, article); err != nil {
		s.logger.Error(ctx, "failed to create article", "error", err)
		return nil, fmt.Errorf("ArticlesService.CreateArticle: %w", err)
	}

	s.logger.Info(ctx, "article created",
		"article_id", article.ID,
		"author_id", actor.ID,
		"status", int(article.Status),
	)
	return article, nil
}

// UpdateArticleParams carries optional content and status changes.
type UpdateArticleParams struct {
	Title           *string
	Content         *string
	Privacy         *lifecycle.Privacy
	ReadLevel       *int
	RequestedStatus *domain.ArticleStatus
}

// UpdateArticle applies content edits and status transitions through the
// machine's update gate.
func (s *ArticlesService) UpdateArticle(ctx context.Context, actor authz.Actor, articleID uuid.UUID, params UpdateArticleParams) (*domain.Article, error) {
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, article.SectionID)
	if err != nil {
		return nil, err
	}

	contentChanged := params.Title != nil || params.Content != nil
	if contentChanged {
		if err := s.checkEditRights(ctx, actor, section, article.AuthorID); err != nil {
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

	transition, err := s.machine.UpdateStatus(ctx, actor, section, article.AuthorID, article.Status.Lifecycle(), requested, contentChanged)
	if err != nil {
		return nil, err
	}

	if contentChanged {
		title := article.Title
		if params.Title != nil {
			title = *params.Title
		}
		content := article.Content
		if params.Content != nil {
			content = s.sanitizer.Sanitize(*params.Content)
		}
		if err := article.UpdateContent(title, content, actor.ID); err != nil {
			return nil, ErrInvalidArticleData.WithDetails(err.Error())
		}
	}
	if params.Privacy != nil {
		if !params.Privacy.IsValid() {
			return nil, ErrInvalidArticleData
		}
		article.Privacy = *params.Privacy
	}
	if params.ReadLevel != nil {
		if *params.ReadLevel < 0 {
			return nil, ErrInvalidArticleData.WithDetails(domain.ErrInvalidReadLevel.Error())
		}
		article.ReadLevel = *params.ReadLevel
	}

	oldStatus := article.Status
	if transition.Changed {
		article.Status = domain.FromLifecycle(transition.To)
	}

	if err := s.repo.Update(ctx, article); err != nil {
		s.logger.Error(ctx, "failed to update article", "article_id", articleID, "error", err)
		return nil, fmt.Errorf("ArticlesService.UpdateArticle: %w", err)
	}

	if transition.Changed {
		s.publishStatusChange(ctx, article, actor.ID, oldStatus)
	}
	return article, nil
}

// GetArticle retrieves one article, applying visibility and bumping the
// read counter when the view counts as a read.
func (s *ArticlesService) GetArticle(ctx context.Context, actor authz.Actor, articleID uuid.UUID) (*domain.Article, error) {
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, article.SectionID)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
		AuthorID:  article.AuthorID,
		Status:    article.Status.Lifecycle(),
		Privacy:   article.Privacy,
		ReadLevel: article.ReadLevel,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Visible {
		// Hidden and absent are deliberately indistinguishable.
		return nil, ErrArticleNotFound
	}

	if decision.CountsAsRead {
		if n, err := s.counters.IncrBy(ctx, s.machine.Kind().Name, article.ID, counters.FieldRead, 1); err != nil {
			s.logger.Warn(ctx, "failed to bump read counter", "article_id", article.ID, "error", err)
		} else {
			article.ReadCount = n
		}
	}
	s.hydrateCounters(ctx, article, !decision.CountsAsRead)
	return article, nil
}

// GetArticleBySlug retrieves one article by slug under the same visibility
// rules as GetArticle.
func (s *ArticlesService) GetArticleBySlug(ctx context.Context, actor authz.Actor, slug string) (*domain.Article, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	if err != nil || article == nil {
		return nil, ErrArticleNotFound
	}
	return s.GetArticle(ctx, actor, article.ID)
}

// ListSectionArticles lists a section's articles the actor may see. Reads
// from lists never count.
func (s *ArticlesService) ListSectionArticles(ctx context.Context, actor authz.Actor, sectionID uuid.UUID) ([]*domain.Article, error) {
	section, err := s.sections.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error(ctx, "failed to list articles", "section_id", sectionID, "error", err)
		return nil, fmt.Errorf("ArticlesService.ListSectionArticles: %w", err)
	}

	visible := make([]*domain.Article, 0, len(all))
	for _, article := range all {
		decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
			AuthorID:  article.AuthorID,
			Status:    article.Status.Lifecycle(),
			Privacy:   article.Privacy,
			ReadLevel: article.ReadLevel,
		})
		if err != nil {
			return nil, err
		}
		if decision.Visible {
			visible = append(visible, article)
		}
	}
	return visible, nil
}

// DeleteArticles deletes a batch of articles. Each id is evaluated
// independently; one failure never aborts the rest.
func (s *ArticlesService) DeleteArticles(ctx context.Context, actor authz.Actor, ids []uuid.UUID, force bool) []lifecycle.BatchResult {
	results := make([]lifecycle.BatchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, lifecycle.BatchResult{ID: id, Outcome: s.deleteOne(ctx, actor, id, force)})
	}
	return results
}

func (s *ArticlesService) deleteOne(ctx context.Context, actor authz.Actor, id uuid.UUID, force bool) lifecycle.BatchOutcome {
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}
	section, err := s.resolveSection(ctx, article.SectionID)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}

	allowed, err := s.machine.CanDelete(ctx, actor, section, article.AuthorID, force)
	if err != nil || !allowed {
		return lifecycle.OutcomePermissionDenied
	}

	if force {
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Error(ctx, "failed to delete article", "article_id", id, "error", err)
			return lifecycle.OutcomeNotFound
		}
		s.logger.Info(ctx, "article deleted", "article_id", id, "actor_id", actor.ID)
		return lifecycle.OutcomeSuccess
	}

	oldStatus := article.Status
	if oldStatus == domain.ArticleCancel {
		return lifecycle.OutcomeSuccess
	}
	article.Status = domain.ArticleCancel
	if err := s.repo.Update(ctx, article); err != nil {
		s.logger.Error(ctx, "failed to cancel article", "article_id", id, "error", err)
		return lifecycle.OutcomeNotFound
	}
	s.publishStatusChange(ctx, article, actor.ID, oldStatus)
	return lifecycle.OutcomeSuccess
}

func (s *ArticlesService) publishStatusChange(ctx context.Context, article *domain.Article, actorID uuid.UUID, old domain.ArticleStatus) {
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.ArticleStatusChangedTopic,
		Payload: events.ArticleStatusChangedEvent{
			ArticleID:  article.ID,
			ActorID:    actorID,
			SectionID:  article.SectionID,
			OldStatus:  int(old),
			NewStatus:  int(article.Status),
			OccurredAt: time.Now(),
		},
	})
}

// checkSectionIntake enforces the section's mute flag and article quotas
// for non-managers.
func (s *ArticlesService) checkSectionIntake(ctx context.Context, actor authz.Actor, section *sections.Section) error {
	if section.Policy.ArticleMute {
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapSectionMute, false)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrSectionMuted
		}
	}
	if section.Policy.MaxArticlesOneDay > 0 {
		n, err := s.repo.CountByAuthorSince(ctx, actor.ID, section.ID, 24)
		if err != nil {
			return fmt.Errorf("ArticlesService.checkSectionIntake: %w", err)
		}
		if n >= int64(section.Policy.MaxArticlesOneDay) {
			return ErrArticleQuota
		}
	}
	return nil
}

// checkEditRights allows content edits by the author, by LEVEL_10 edit
// grant holders, or by delegated article editors.
func (s *ArticlesService) checkEditRights(ctx context.Context, actor authz.Actor, section *sections.Section, authorID uuid.UUID) error {
	if actor.ID == authorID {
		return nil
	}
	if s.resolver.MajorGE(actor, permission.ArticleEdit, authz.Level10) {
		return nil
	}
	if section != nil {
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapArticleEdit, false)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return authzapp.ErrPermissionDenied
}

func (s *ArticlesService) hydrateCounters(ctx context.Context, article *domain.Article, includeRead bool) {
	kind := s.machine.Kind().Name
	if includeRead {
		if n, err := s.counters.Value(ctx, kind, article.ID, counters.FieldRead); err == nil {
			article.ReadCount = n
		}
	}
	if n, err := s.counters.Value(ctx, kind, article.ID, counters.FieldComment); err == nil {
		article.CommentCount = n
	}
	if n, err := s.counters.Value(ctx, kind, article.ID, counters.FieldLike); err == nil {
		article.LikeCount = n
	}
	if n, err := s.counters.Value(ctx, kind, article.ID, counters.FieldDislike); err == nil {
		article.DislikeCount = n
	}
}

func (s *ArticlesService) resolveSection(ctx context.Context, sectionID *uuid.UUID) (*sections.Section, error) {
	if sectionID == nil {
		return nil, nil
	}
	section, err := s.sections.GetSection(ctx, *sectionID)
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (s *ArticlesService) getArticle(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("ArticlesService.getArticle: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func (s *ArticlesService) ensureUniqueSlug(ctx context.Context, base string, excludeID *uuid.UUID) (string, error) {
	exists, err := s.repo.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("ArticlesService.ensureUniqueSlug: %w", err)
	}
	if !exists {
		return base, nil
	}
	for suffix := 2; suffix < 100; suffix++ {
		candidate := validator.MakeSlugUniqueWithMaxLength(base, suffix, domain.MaxSlugLength)
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("ArticlesService.ensureUniqueSlug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrInvalidArticleData.WithDetails("could not generate a unique slug")
}
