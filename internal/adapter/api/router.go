package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/user/marina-office/internal/adapter/api/handler"
	"github.com/user/marina-office/internal/adapter/api/middleware"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/pkg/config"
)

// RouterDeps carries the handlers the public router mounts.
type RouterDeps struct {
	Interests *handler.InterestHandler
	Resources *handler.ResourceHandler
	Admin     *handler.AdminHandler
	Feed      *handler.FeedBroker
}

// NewRouter creates and configures the main HTTP router for the office service.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, logger))

		r.Route("/interests", func(r chi.Router) {
			r.With(middleware.RateLimit(cfg.IntakeRatePerMin)).Post("/", deps.Interests.Create)
			r.Get("/", deps.Interests.List)
			r.Get("/{id}", deps.Interests.Get)
			r.Post("/{id}/seen", deps.Interests.MarkSeen)
			r.Get("/{id}/replies", deps.Interests.ListReplies)
			r.Post("/{id}/accept", deps.Interests.Accept)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleDockManager, domain.RoleSuperadmin))
				r.Put("/{id}/status", deps.Interests.SetStatus)
				r.Post("/{id}/replies", deps.Interests.ComposeReply)
			})
		})

		r.Route("/resources", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleDockManager, domain.RoleSuperadmin))
			r.Get("/offerable", deps.Resources.Offerable)
			r.Put("/{id}/tenants", deps.Resources.AssignTenants)
			r.Delete("/{id}/tenants/{accountID}", deps.Resources.RemoveTenant)
			r.Put("/{id}/invoice-responsible", deps.Resources.SetInvoiceResponsible)
			r.Put("/{id}/second-hand", deps.Resources.SetSecondHand)
		})

		r.Post("/me/reconcile", deps.Admin.ReconcileSelf)

		r.With(middleware.RequireRole(domain.RoleDockManager, domain.RoleSuperadmin)).
			Get("/feed", deps.Feed.ServeHTTP)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleSuperadmin))
			r.Post("/reconcile", deps.Admin.Reconcile)
			r.Post("/accounts/{uid}/approve", deps.Admin.ApproveAccount)
			r.Post("/accounts/{uid}/password", deps.Admin.SetPassword)
			r.Delete("/accounts/{uid}", deps.Admin.DeleteAccount)
		})
	})

	return r
}
