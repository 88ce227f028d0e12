package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/personal-website-backend/internal/health"
	"github.com/sandeepkv93/personal-website-backend/internal/http/handler"
	"github.com/sandeepkv93/personal-website-backend/internal/http/middleware"
	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
)

const maxBodyBytes = 1 << 20

type Dependencies struct {
	UserHandler    *handler.UserHandler
	RoleHandler    *handler.RoleHandler
	Static         http.Handler
	Logger         *slog.Logger
	CORSOrigins    []string
	RedirectHTTPS  bool
	APIRateLimiter APIRateLimiterFunc
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

type APIRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(dep.Logger))
	r.Use(middleware.HTTPSRedirect(dep.RedirectHTTPS))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	static := dep.Static
	if static == nil {
		static = handler.NewSPAHandler("")
	}
	r.NotFound(static.ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if dep.APIRateLimiter != nil {
			r.Use(dep.APIRateLimiter)
		}
		r.Route("/users", func(r chi.Router) {
			h := dep.UserHandler
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Post("/login", h.RecordLogin)
			r.Get("/by-external-id/{external_id}", h.GetByExternalID)
			r.Get("/by-email/{email}", h.GetByEmail)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetByID)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Get("/roles", h.Roles)
				r.Get("/roles/{role_id}", h.GetAssignment)
				r.Put("/roles/{role_id}", h.AssignRole)
				r.Delete("/roles/{role_id}", h.RevokeRole)
			})
		})
		r.Route("/roles", func(r chi.Router) {
			h := dep.RoleHandler
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/by-name/{name}", h.GetByName)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetByID)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Get("/users", h.Users)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
