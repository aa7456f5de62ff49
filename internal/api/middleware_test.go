package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/purificadora/inventario/internal/auth"
	"github.com/purificadora/inventario/internal/db"
	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/store"
)

func TestRequireSessionStoresClaims(t *testing.T) {
	s := store.New(db.NewTestDB(t))
	core, logs := observer.New(zapcore.ErrorLevel)
	h := &Handler{store: s, log: zap.New(core).Sugar(), opts: Options{SessionSecret: testSecret}}

	u, err := s.CreateUser(context.Background(), "Ana", "ana@example.com", "hash", model.RoleAdmin)
	require.NoError(t, err)
	token, err := auth.GenerateToken(testSecret, time.Hour, u.ID, u.Role)
	require.NoError(t, err)

	var claims *auth.Claims
	var user *model.User
	handler := h.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = GetClaims(r.Context())
		user = GetUser(r.Context())
		h.serverError(w, r, errors.New("boom"), "Error de prueba")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, claims)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, user)
	assert.Equal(t, "ana@example.com", user.Email)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error de prueba"}`, rec.Body.String())
	entries := logs.FilterMessage("Error de prueba").All()
	require.Len(t, entries, 1)
	assert.Equal(t, u.ID, entries[0].ContextMap()["user_id"])
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	h := &Handler{store: store.New(db.NewTestDB(t)), log: zap.NewNop().Sugar(), opts: Options{SessionSecret: testSecret}}

	called := false
	handler := h.RequireSession(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
