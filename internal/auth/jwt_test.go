package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purificadora/inventario/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, time.Hour, 1, model.RoleMaster)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, model.RoleMaster, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expiry(), 5*time.Second)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret1", time.Hour, 1, model.RoleAdmin)
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestGenerateTokenDefaultTTL(t *testing.T) {
	token, err := GenerateToken("secret", -time.Hour, 1, model.RoleGuest)
	require.NoError(t, err)
	// A non-positive TTL falls back to the default, so the token is valid.
	_, err = ValidateToken("secret", token)
	assert.NoError(t, err)
}

func TestUniqueJTI(t *testing.T) {
	t1, err := GenerateToken("secret", time.Hour, 1, model.RoleGuest)
	require.NoError(t, err)
	t2, err := GenerateToken("secret", time.Hour, 1, model.RoleGuest)
	require.NoError(t, err)

	c1, err := ValidateToken("secret", t1)
	require.NoError(t, err)
	c2, err := ValidateToken("secret", t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "abc", DefaultSessionTTL, false)

	req := &http.Request{Header: http.Header{"Cookie": rec.Header().Values("Set-Cookie")}}
	assert.Equal(t, "abc", TokenFromRequest(req))

	rec = httptest.NewRecorder()
	ClearCookie(rec)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	assert.Equal(t, "", TokenFromRequest(&http.Request{Header: http.Header{}}))
}
