package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/purificadora/inventario/internal/files"
	"github.com/purificadora/inventario/internal/store"
)

// multipartMemory is how much of a multipart form is kept in memory.
const multipartMemory = 8 << 20

// Upload handles POST /api/upload (multipart field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "El archivo excede el tamaño máximo permitido")
			return
		}
		jsonError(w, http.StatusBadRequest, "No se subió ningún archivo")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "No se subió ningún archivo")
		return
	}
	defer file.Close()

	if header.Size > h.opts.MaxUploadBytes {
		jsonError(w, http.StatusRequestEntityTooLarge, "El archivo excede el tamaño máximo permitido")
		return
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.serverError(w, r, err, "Error al leer el archivo")
		return
	}

	user := GetUser(r.Context())
	rec, err := h.files.Register(r.Context(), files.Upload{
		Name: header.Filename,
		MIME: files.DetectMIME(header.Header.Get("Content-Type"), head[:n]),
		Body: file,
	}, user.ID)
	if validationError(w, err) {
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Error al guardar archivo en la base de datos")
		return
	}

	h.log.Infow("file uploaded", "file_id", rec.ID, "name", rec.OriginalName, "size", rec.Size, "user_id", user.ID)
	success(w, http.StatusOK, "Archivo subido exitosamente", map[string]any{
		"file": map[string]any{"id": rec.ID, "nombre": rec.OriginalName},
	})
}

// ListFiles handles GET /api/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.files.List(r.Context())
	if err != nil {
		h.serverError(w, r, err, "Error al obtener archivos")
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// DeleteFile handles DELETE /api/files/{id}.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	err := h.files.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Error al eliminar archivo de la base de datos")
		return
	}

	success(w, http.StatusOK, "Archivo eliminado exitosamente", nil)
}

// FileThumbnail handles GET /api/files/{id}/miniatura.
func (h *Handler) FileThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	rec, err := h.files.Get(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "Error al buscar archivo")
		return
	}
	if rec == nil {
		jsonError(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}
	if rec.Thumbnail == "" {
		jsonError(w, http.StatusNotFound, "Vista previa no disponible")
		return
	}

	src, err := h.files.Open(rec.Thumbnail)
	if err != nil {
		h.serverError(w, r, err, "Error al leer la vista previa")
		return
	}
	defer src.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, src); err != nil {
		h.log.Warnw("streaming preview", "file_id", id, "error", err)
	}
}

// PurgeOrphanedFiles handles GET /api/maintenance/clean-orphaned-files.
func (h *Handler) PurgeOrphanedFiles(w http.ResponseWriter, r *http.Request) {
	res, err := h.files.PurgeOrphaned(r.Context())
	if err != nil {
		h.serverError(w, r, err, "Error al limpiar archivos huérfanos")
		return
	}

	msg := "No hay archivos huérfanos"
	if res.Files > 0 {
		msg = fmt.Sprintf("Se eliminaron %d archivos huérfanos", res.Files)
	}
	success(w, http.StatusOK, msg, map[string]any{
		"eliminados":   res.Files,
		"reintentados": res.Retried,
	})
}
