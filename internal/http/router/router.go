package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/progress-api/docs" // registers the OpenAPI document
	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/http/handler"
	"github.com/straye-as/progress-api/internal/http/middleware"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Health      *handler.HealthHandler
	Project     *handler.ProjectHandler
	DailyReport *handler.DailyReportHandler
	Blockage    *handler.BlockageHandler
	Dashboard   *handler.DashboardHandler
	Upload      *handler.UploadHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", h.Health.Live)
	r.Get("/health/db", h.Health.Database)
	r.Get("/health/ready", h.Health.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Signed-token routes used by the local storage backend. The token is the credential.
		r.Put("/uploads/{token}", h.Upload.Upload)
		r.Get("/files", h.Upload.Download)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(middleware.TagUser)
			r.Use(rt.rateLimiter.Limit)
			if rt.cfg.Server.RequestTimeout > 0 {
				r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeoutDuration()))
			}

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Project.List)
				r.Post("/", h.Project.Create)
				r.Get("/{id}", h.Project.GetByID)
				r.Put("/{id}", h.Project.Update)
				r.Get("/{id}/versions", h.Project.ListVersions)
				r.Get("/{id}/versions/{versionId}", h.Project.GetVersion)
				r.Post("/{id}/comments", h.Project.AddComment)
				r.Post("/{id}/documents", h.Project.AddDocument)

				// Daily report lifecycle
				r.Post("/{id}/daily-report", h.DailyReport.Submit)
				r.Post("/{id}/daily-report/validate", h.DailyReport.Validate)
				r.Post("/{id}/daily-report/approve", h.DailyReport.Approve)
				r.Post("/{id}/daily-report/reject", h.DailyReport.Reject)

				r.Get("/{id}/blockages", h.Blockage.List)
				r.Post("/{id}/blockages/{blockageId}/close", h.Blockage.Close)
			})

			r.Post("/uploads", h.Upload.RequestSlot)
			r.Post("/files/resolve", h.Upload.Resolve)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", h.Dashboard.Overview)
				r.Get("/deadlines", h.Dashboard.Deadlines)
				r.Get("/activity", h.Dashboard.Activity)
				r.With(rt.authMiddleware.RequireRole(domain.RoleManagingDirector, domain.RoleHeadOfPlanning)).
					Get("/managers", h.Dashboard.Managers)
			})
		})
	})

	return r
}
