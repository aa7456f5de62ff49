package api

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/purificadora/inventario/internal/auth"
	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Role  string `json:"tipo"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	email := model.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Email y contraseña son obligatorios")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.serverError(w, r, err, "Error en el servidor")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "Credenciales incorrectas")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "Credenciales incorrectas")
		return
	}

	token, err := auth.GenerateToken(h.opts.SessionSecret, h.opts.SessionTTL, user.ID, user.Role)
	if err != nil {
		h.serverError(w, r, err, "Error en el servidor")
		return
	}
	auth.SetCookie(w, token, h.opts.SessionTTL, h.opts.SecureCookies)

	h.log.Infow("user logged in", "user_id", user.ID, "role", user.Role)
	success(w, http.StatusOK, "Login exitoso", map[string]any{
		"user": sessionUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// Logout handles POST /api/logout. The session token, if any, is revoked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		if claims, err := auth.ValidateToken(h.opts.SessionSecret, token); err == nil && claims.ID != "" {
			if err := h.store.RevokeToken(r.Context(), claims.ID, claims.Expiry()); err != nil {
				h.log.Errorw("revoking session", "error", err, "request_id", GetRequestID(r.Context()))
			}
		}
	}
	auth.ClearCookie(w)
	success(w, http.StatusOK, "Sesión cerrada", nil)
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Normalize()
	if err := req.Validate(); validationError(w, err) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, r, err, "Error al registrar usuario")
		return
	}

	role := req.RoleFor(h.opts.AdminCode)
	user, err := h.store.CreateUser(r.Context(), req.Name, req.Email, string(hash), role)
	if errors.Is(err, store.ErrEmailTaken) {
		jsonError(w, http.StatusBadRequest, "El email ya está registrado")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Error al registrar usuario")
		return
	}

	h.log.Infow("user registered", "user_id", user.ID, "role", user.Role)
	success(w, http.StatusOK, "Usuario registrado exitosamente", map[string]any{"tipo": user.Role})
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

