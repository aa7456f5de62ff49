package web

import (
	"net/http"

	"github.com/purificadora/inventario/internal/auth"
)

// HomePage handles GET /.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	pd := newPageData("Inicio", GetWebUser(r.Context()))
	s.Templates.Render(w, "home.html", &pd)
}

// LoginPage handles GET /login.html. Signed-in users go straight to the
// dashboard.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if GetWebUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard.html", http.StatusSeeOther)
		return
	}
	pd := newPageData("Iniciar sesión", nil)
	s.Templates.Render(w, "login.html", &pd)
}

// RegisterPage handles GET /register.html.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	pd := newPageData("Registro", GetWebUser(r.Context()))
	s.Templates.Render(w, "register.html", &pd)
}

// Logout handles POST /logout from the page header.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		if claims, err := auth.ValidateToken(s.Secret, token); err == nil {
			if err := s.Store.RevokeToken(r.Context(), claims.ID, claims.Expiry()); err != nil {
				s.Log.Errorw("failed to revoke session", "error", err)
			}
		}
	}
	auth.ClearCookie(w)
	http.Redirect(w, r, "/login.html", http.StatusSeeOther)
}
