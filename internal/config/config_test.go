package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"ADDR", "DB_DRIVER", "DATABASE_URI", "UPLOAD_DIR", "MAX_UPLOAD_MB", "SESSION_TTL",
	"SESSION_SECRET", "SECURE_COOKIES", "ADMIN_CODE", "MASTER_NAME", "MASTER_EMAIL",
	"MASTER_PASSWORD", "ALLOWED_ORIGINS", "LOG_FILE", "LOG_LEVEL", "APP_ENV",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "0509", cfg.AdminCode)
	assert.Equal(t, int64(50), cfg.MaxUploadMB)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Development())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost/db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Development())
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-a", ":7000", "--admin-code", "1234"}))

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "1234", cfg.AdminCode)
}

func TestUnsetFlagsKeepEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DBDriver = "mysql"
	cfg.MaxUploadMB = 0
	cfg.Env = "staging"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
	assert.Contains(t, err.Error(), "upload")
	assert.Contains(t, err.Error(), "staging")
}
