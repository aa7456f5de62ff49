package api

import (
	"errors"
	"net/http"

	"github.com/purificadora/inventario/internal/store"
)

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err, "Error al obtener usuarios")
		return
	}
	jsonResponse(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /api/users/{id}. The user's files go with them.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	acting := GetUser(r.Context())

	removed, err := h.store.DeleteUser(r.Context(), acting.ID, id)
	switch {
	case errors.Is(err, store.ErrSelfDelete):
		jsonError(w, http.StatusForbidden, "No puedes eliminarte a ti mismo")
		return
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	case errors.Is(err, store.ErrProtectedUser):
		jsonError(w, http.StatusForbidden, "No se puede eliminar otro usuario maestro")
		return
	case err != nil:
		h.serverError(w, r, err, "Error eliminando usuario de la base de datos")
		return
	}

	h.files.Discard(r.Context(), "user deleted", removed)

	h.log.Infow("user deleted", "user_id", id, "by", acting.ID, "files", len(removed))
	success(w, http.StatusOK, "Usuario eliminado exitosamente", nil)
}
