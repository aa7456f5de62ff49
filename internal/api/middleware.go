package api

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/auth"
	"github.com/purificadora/inventario/internal/model"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	userKey      contextKey = "user"
	requestIDKey contextKey = "request_id"
)

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9\-]{1,64}$`)

// RequestID tags each request with an X-Request-ID, keeping a safe
// caller-supplied one and generating a UUID otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs HTTP requests with method, path, status and duration.
func Logger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Infow("request",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"status", rec.status,
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", GetRequestID(r.Context()),
			)
		})
	}
}

// Recoverer turns a panic into a 500 response. Details are only included
// in development.
func Recoverer(log *zap.SugaredLogger, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				log.Errorw("panic serving request",
					"panic", rv,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				body := map[string]string{"error": "Internal Server Error"}
				if development {
					body["details"] = fmt.Sprint(rv)
				}
				jsonResponse(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows cross-origin requests from the listed origins. "*" allows
// any origin; credentials are allowed so session cookies work.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	anyOrigin := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && origin != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession validates the session cookie, rejects revoked tokens and
// loads the current user into the context. The user is nil when the
// account no longer exists.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "No autenticado")
			return
		}

		claims, err := auth.ValidateToken(h.opts.SessionSecret, token)
		if err != nil {
			auth.ClearCookie(w)
			jsonError(w, http.StatusUnauthorized, "No autenticado")
			return
		}

		revoked, err := h.store.IsTokenRevoked(r.Context(), claims.ID)
		if err != nil {
			h.serverError(w, r, err, "Error en el servidor")
			return
		}
		if revoked {
			auth.ClearCookie(w)
			jsonError(w, http.StatusUnauthorized, "No autenticado")
			return
		}

		user, err := h.store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			h.serverError(w, r, err, "Error en el servidor")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		if user != nil {
			ctx = context.WithValue(ctx, userKey, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var deniedMessages = map[model.Permission]string{
	model.PermEditInventory: "Acceso denegado: Se requiere rol admin o maestro",
	model.PermManageFiles:   "Acceso denegado: Se requiere rol admin o maestro",
	model.PermManageUsers:   "Solo el usuario maestro puede acceder",
	model.PermMaintenance:   "Solo el usuario maestro puede acceder",
}

// RequirePermission rejects requests whose user's role lacks p. It must
// run after RequireSession.
func RequirePermission(p model.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				jsonError(w, http.StatusUnauthorized, "No autenticado")
				return
			}
			if !model.Can(user.Role, p) {
				msg, ok := deniedMessages[p]
				if !ok {
					msg = "Acceso denegado"
				}
				jsonError(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the session claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// GetUser retrieves the current user from the context.
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}
