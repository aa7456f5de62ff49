package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/storage"
	"github.com/purificadora/inventario/internal/store"
	webembed "github.com/purificadora/inventario/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(st *store.Store, uploads *storage.Disk, secret string, log *zap.SugaredLogger) (chi.Router, error) {
	templates, err := LoadTemplates(log)
	if err != nil {
		return nil, err
	}

	static, err := webembed.StaticFS()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Store:     st,
		Uploads:   uploads,
		Templates: templates,
		Secret:    secret,
		Log:       log,
	}

	r := chi.NewRouter()
	r.NotFound(notFound)

	// Static assets.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public pages.
	r.Group(func(r chi.Router) {
		r.Use(s.OptionalAuthMiddleware)
		r.Get("/", s.HomePage)
		r.Get("/home.html", s.HomePage)
		r.Get("/login.html", s.LoginPage)
		r.Get("/register.html", s.RegisterPage)
	})
	r.Post("/logout", s.Logout)

	// Session pages.
	r.Group(func(r chi.Router) {
		r.Use(s.CookieAuthMiddleware)
		r.Get("/dashboard.html", s.Dashboard)
		r.Get("/archivos.html", s.FilesPage)
		r.Get("/uploads/{name}", s.Upload)
	})

	return r, nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Ruta no encontrada"})
}
