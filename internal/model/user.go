package model

import (
	"net/mail"
	"strings"
	"time"
)

// User is an account that can sign in.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"tipo"`
	CreatedAt    time.Time `json:"fecha_registro"`
}

// Roles.
const (
	RoleMaster = "master"
	RoleAdmin  = "admin"
	RoleGuest  = "guest"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := capabilities[role]
	return ok
}

// Registration is a self sign-up request.
type Registration struct {
	Name      string `json:"nombre"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AdminCode string `json:"codigoAdmin"`
}

// Normalize trims surrounding whitespace and lowercases the email.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.AdminCode = strings.TrimSpace(r.AdminCode)
}

// Validate checks the mandatory fields.
func (r Registration) Validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return &ValidationError{Message: "Todos los campos son obligatorios"}
	}
	if len(r.Password) > 72 {
		return &ValidationError{Message: "La contraseña es demasiado larga"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &ValidationError{Message: "El email no es válido"}
	}
	return nil
}

// RoleFor returns the role a registration receives given the configured admin code.
func (r Registration) RoleFor(adminCode string) string {
	if adminCode != "" && r.AdminCode == adminCode {
		return RoleAdmin
	}
	return RoleGuest
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
