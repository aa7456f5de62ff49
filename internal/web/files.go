package web

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/purificadora/inventario/internal/model"
)

// FilesPage handles GET /archivos.html.
func (s *Server) FilesPage(w http.ResponseWriter, r *http.Request) {
	pd := newPageData("Archivos", GetWebUser(r.Context()))

	list, err := s.Store.ListFiles(r.Context())
	if err != nil {
		s.Log.Errorw("failed to list files", "error", err)
		pd.Error = "No se pudieron cargar los archivos."
	}

	s.Templates.Render(w, "archivos.html", &struct {
		PageData
		Files []model.FileRecord
	}{
		PageData: pd,
		Files:    list,
	})
}

// Upload handles GET /uploads/{name}, serving a stored blob.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	f, err := s.Uploads.OpenName(chi.URLParam(r, "name"))
	if errors.Is(err, fs.ErrNotExist) {
		notFound(w, r)
		return
	}
	if err != nil {
		s.Log.Warnw("failed to open upload", "name", chi.URLParam(r, "name"), "error", err)
		notFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		notFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
