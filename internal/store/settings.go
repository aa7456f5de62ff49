package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionSecret returns the persisted session signing secret, generating
// and storing one on first use. Insert-then-select keeps concurrent
// startups on the same value.
func (s *Store) SessionSecret(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ajustes (clave, valor) VALUES ('session_secret', ?) ON CONFLICT (clave) DO NOTHING`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing session secret: %w", err)
	}

	var secret string
	err = s.db.QueryRowContext(ctx,
		`SELECT valor FROM ajustes WHERE clave = 'session_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying session secret: %w", err)
	}

	return secret, nil
}
