package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/files"
	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/store"
)

// Options configures the API handlers.
type Options struct {
	SessionSecret  string
	SessionTTL     time.Duration
	SecureCookies  bool
	AdminCode      string
	MaxUploadBytes int64
	AllowedOrigins []string
	Development    bool
}

// Handler holds dependencies for API handlers.
type Handler struct {
	store *store.Store
	files *files.Registry
	log   *zap.SugaredLogger
	opts  Options
}

// NewRouter creates the HTTP router with every /api route. Other paths can
// be mounted on the returned router.
func NewRouter(s *store.Store, reg *files.Registry, log *zap.SugaredLogger, opts Options) *chi.Mux {
	h := &Handler{store: s, files: reg, log: log, opts: opts}

	r := chi.NewRouter()
	r.Use(RequestID, Logger(log), Recoverer(log, opts.Development), CORS(opts.AllowedOrigins))
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			// The profile answers 404 rather than 401 once the account is gone.
			r.Get("/user", h.CurrentUser)

			r.Group(func(r chi.Router) {
				r.Use(RequirePermission(model.PermManageUsers))
				r.Get("/users", h.ListUsers)
				r.Delete("/users/{id}", h.DeleteUser)
			})

			r.With(RequirePermission(model.PermManageFiles)).Post("/upload", h.Upload)
			r.With(RequirePermission(model.PermView)).Get("/files", h.ListFiles)
			r.With(RequirePermission(model.PermView)).Get("/files/{id}/miniatura", h.FileThumbnail)
			r.With(RequirePermission(model.PermManageFiles)).Delete("/files/{id}", h.DeleteFile)

			r.Route("/inventario", func(r chi.Router) {
				r.With(RequirePermission(model.PermView)).Get("/movimientos", h.ListMovements)

				for _, c := range model.Categories {
					ch := &categoryHandler{Handler: h, category: c}
					r.Route("/"+c.Name, ch.routes)
				}
			})

			r.With(RequirePermission(model.PermMaintenance)).
				Get("/maintenance/clean-orphaned-files", h.PurgeOrphanedFiles)
		})
	})

	return r
}
