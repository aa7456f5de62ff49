package web

import (
	"context"
	"net/http"

	"github.com/purificadora/inventario/internal/auth"
	"github.com/purificadora/inventario/internal/model"
)

type webContextKey string

const webUserKey webContextKey = "webuser"

// sessionUser resolves the session cookie to a live user. It returns nil
// for a missing, invalid or revoked token and for deleted accounts.
func (s *Server) sessionUser(r *http.Request) *model.User {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return nil
	}

	claims, err := auth.ValidateToken(s.Secret, token)
	if err != nil {
		return nil
	}

	revoked, err := s.Store.IsTokenRevoked(r.Context(), claims.ID)
	if err != nil {
		s.Log.Errorw("failed to check token revocation", "error", err)
		return nil
	}
	if revoked {
		return nil
	}

	user, err := s.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		s.Log.Errorw("failed to load session user", "error", err)
		return nil
	}
	return user
}

// CookieAuthMiddleware redirects to the login page unless the request
// carries a valid session, and adds the user to the context.
func (s *Server) CookieAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.sessionUser(r)
		if user == nil {
			if auth.TokenFromRequest(r) != "" {
				auth.ClearCookie(w)
			}
			http.Redirect(w, r, "/login.html", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), webUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware adds the session user to the context when there
// is one and never redirects.
func (s *Server) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := s.sessionUser(r); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), webUserKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// GetWebUser retrieves the session user from web context.
func GetWebUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(webUserKey).(*model.User)
	return user
}
