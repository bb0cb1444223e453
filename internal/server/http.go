package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/auth"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rest"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rest/middleware"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// Handlers groups the REST handlers for router construction.
type Handlers struct {
	Health   *rest.HealthHandler
	Roles    *rest.RolesHandler
	Sections *rest.SectionsHandler
	Articles *rest.ArticlesHandler
	Comments *rest.CommentsHandler
	Photos   *rest.PhotosHandler
}

// NewHandlers collects the REST handlers.
func NewHandlers(
	health *rest.HealthHandler,
	roles *rest.RolesHandler,
	sections *rest.SectionsHandler,
	articles *rest.ArticlesHandler,
	comments *rest.CommentsHandler,
	photos *rest.PhotosHandler,
) Handlers {
	return Handlers{
		Health:   health,
		Roles:    roles,
		Sections: sections,
		Articles: articles,
		Comments: comments,
		Photos:   photos,
	}
}

// NewHTTPServer creates and configures the HTTP server with all routes.
// Health endpoints are public; everything else requires a verified token
// and a resolved actor. Fine-grained authorization happens inside the
// services, which need the loaded resource to decide.
func NewHTTPServer(
	config Config,
	handlers Handlers,
	jwtMiddleware *auth.JWTMiddleware,
	actorMiddleware *auth.ActorMiddleware,
	log logger.Logger,
) *http.Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteJSONError(w, middleware.ErrorCodeNotFound, "Resource not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteJSONError(w, middleware.ErrorCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", handlers.Health.GetLiveness)
		r.Get("/health/ready", handlers.Health.GetReadiness)

		r.Group(func(r chi.Router) {
			r.Use(jwtMiddleware.Middleware)
			r.Use(actorMiddleware.Middleware)

			r.Get("/permissions", handlers.Roles.ListPermissions)

			r.Route("/roles", func(r chi.Router) {
				r.Get("/", handlers.Roles.ListRoles)
				r.Post("/", handlers.Roles.CreateRole)
				r.Get("/{id}", handlers.Roles.GetRole)
				r.Patch("/{id}", handlers.Roles.UpdateRole)
				r.Delete("/{id}", handlers.Roles.DeleteRole)
				r.Put("/{id}/grants", handlers.Roles.ReplaceGrants)
				r.Post("/{id}/default", handlers.Roles.SetDefaultRole)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Get("/", handlers.Sections.ListSections)
				r.Post("/", handlers.Sections.CreateSection)
				r.Get("/{id}", handlers.Sections.GetSection)
				r.Patch("/{id}", handlers.Sections.UpdateSection)
				r.Delete("/{id}", handlers.Sections.DeleteSection)
				r.Patch("/{id}/policy", handlers.Sections.UpdatePolicy)
				r.Put("/{id}/moderators", handlers.Sections.SetModerators)
				r.Put("/{id}/assistants", handlers.Sections.SetAssistants)
				r.Post("/{id}/transfer", handlers.Sections.TransferOwner)
				r.Get("/{id}/articles", handlers.Articles.ListSectionArticles)
			})

			r.Route("/articles", func(r chi.Router) {
				r.Post("/", handlers.Articles.CreateArticle)
				r.Delete("/", handlers.Articles.DeleteArticles)
				r.Get("/{id}", handlers.Articles.GetArticle)
				r.Patch("/{id}", handlers.Articles.UpdateArticle)
				r.Get("/slug/{slug}", handlers.Articles.GetArticleBySlug)
				r.Get("/{id}/comments", handlers.Comments.ListArticleComments)
				r.Post("/{id}/comments", handlers.Comments.CreateComment)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Delete("/", handlers.Comments.DeleteComments)
				r.Get("/{id}", handlers.Comments.GetComment)
				r.Patch("/{id}", handlers.Comments.UpdateComment)
			})

			r.Route("/photos", func(r chi.Router) {
				r.Post("/", handlers.Photos.UploadPhoto)
				r.Delete("/", handlers.Photos.DeletePhotos)
				r.Get("/{id}", handlers.Photos.GetPhoto)
				r.Patch("/{id}", handlers.Photos.UpdatePhoto)
			})

			r.Route("/albums", func(r chi.Router) {
				r.Post("/", handlers.Photos.CreateAlbum)
				r.Get("/{id}", handlers.Photos.GetAlbum)
				r.Patch("/{id}", handlers.Photos.UpdateAlbum)
				r.Delete("/{id}", handlers.Photos.DeleteAlbum)
				r.Get("/{id}/photos", handlers.Photos.ListAlbumPhotos)
				r.Get("/owner/{ownerID}", handlers.Photos.ListAlbums)
			})
		})
	})

	handler := withObservability(r, log)

	return &http.Server{
		Addr:         config.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// withObservability adds request logging
func withObservability(handler http.Handler, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Use chi's response writer wrapper to capture status code and bytes written
		wrr := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		handler.ServeHTTP(wrr, r)

		duration := time.Since(start)

		var actorID string
		if actor, ok := auth.ActorFrom(r.Context()); ok {
			actorID = actor.ID.String()
		}

		log.Info(r.Context(), "HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrr.Status(),
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"actor_id", actorID,
		)
	})
}
