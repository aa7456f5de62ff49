// Package config loads server settings from .env, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds every server setting.
type Config struct {
	Addr        string        `env:"ADDR" envDefault:":3000"`
	DBDriver    string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN string        `env:"DATABASE_URI" envDefault:"purificadora.sqlite3"`
	UploadDir   string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadMB int64         `env:"MAX_UPLOAD_MB" envDefault:"50"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	// SessionSecret signs session tokens. Empty means a secret generated
	// once and kept in the database.
	SessionSecret  string   `env:"SESSION_SECRET"`
	SecureCookies  bool     `env:"SECURE_COOKIES"`
	AdminCode      string   `env:"ADMIN_CODE" envDefault:"0509"`
	MasterName     string   `env:"MASTER_NAME" envDefault:"Usuario Maestro"`
	MasterEmail    string   `env:"MASTER_EMAIL" envDefault:"maestro@purificadora.local"`
	MasterPassword string   `env:"MASTER_PASSWORD"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogFile        string   `env:"LOG_FILE"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	Env            string   `env:"APP_ENV" envDefault:"production"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// BindFlags registers command-line flags that override the loaded values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Addr, "addr", "a", c.Addr, "listen address")
	fs.StringVar(&c.DBDriver, "db-driver", c.DBDriver, "database driver (sqlite or postgres)")
	fs.StringVarP(&c.DatabaseDSN, "db", "d", c.DatabaseDSN, "database path or connection string")
	fs.StringVar(&c.UploadDir, "uploads", c.UploadDir, "directory for uploaded files")
	fs.Int64Var(&c.MaxUploadMB, "max-upload-mb", c.MaxUploadMB, "maximum upload size in MiB")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "session lifetime")
	fs.StringVar(&c.SessionSecret, "session-secret", c.SessionSecret, "session signing secret (default: generated and stored)")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", c.SecureCookies, "mark session cookies Secure (HTTPS only)")
	fs.StringVar(&c.AdminCode, "admin-code", c.AdminCode, "registration code that grants the admin role")
	fs.StringVar(&c.MasterName, "master-name", c.MasterName, "master account display name")
	fs.StringVar(&c.MasterEmail, "master-email", c.MasterEmail, "master account email")
	fs.StringVar(&c.MasterPassword, "master-password", c.MasterPassword, "master account password (default: generated)")
	fs.StringSliceVar(&c.AllowedOrigins, "cors", c.AllowedOrigins, "allowed CORS origins (* for any)")
	fs.StringVarP(&c.LogFile, "log", "l", c.LogFile, "log file path (default: stdout/stderr only)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.Env, "env", c.Env, "environment (production or development)")
}

// Validate checks the settings for obvious mistakes.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("unsupported db driver %q", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database location is empty"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.MasterEmail == "" {
		errs = append(errs, errors.New("master email is empty"))
	}
	if c.Env != EnvProduction && c.Env != EnvDevelopment {
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Env))
	}
	return errors.Join(errs...)
}

// Development reports whether internal error details may be shown to clients.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
