package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/purificadora/inventario/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already out; an encoding error can't be reported.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// success writes {"success": true, "message": ...} plus any extra fields.
func success(w http.ResponseWriter, status int, message string, extra map[string]any) {
	body := map[string]any{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	jsonResponse(w, status, body)
}

// decodeJSON decodes a JSON request body into the given target. An empty
// body leaves target untouched.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// serverError logs err and writes a 500 with a generic message. The error
// text is included only in development.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error, message string) {
	fields := []any{
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", GetRequestID(r.Context()),
	}
	if claims := GetClaims(r.Context()); claims != nil {
		fields = append(fields, "user_id", claims.UserID)
	}
	h.log.Errorw(message, fields...)
	body := map[string]string{"error": message}
	if h.opts.Development {
		body["details"] = err.Error()
	}
	jsonResponse(w, http.StatusInternalServerError, body)
}

// validationError writes a 400 if err is a ValidationError and reports
// whether it did.
func validationError(w http.ResponseWriter, err error) bool {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		jsonError(w, http.StatusBadRequest, verr.Message)
		return true
	}
	return false
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryLimit parses the "limite" query parameter, returning 0 when absent
// or malformed.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limite"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	jsonError(w, http.StatusNotFound, "Ruta no encontrada")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	jsonError(w, http.StatusMethodNotAllowed, "Método no permitido")
}
