package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purificadora/inventario/internal/db"
	"github.com/purificadora/inventario/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(db.NewTestDB(t))
}

func mustUser(t *testing.T, s *Store, name, email, role string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, email, "hash", role)
	require.NoError(t, err)
	return u
}

func mustItem(t *testing.T, s *Store, c *model.Category, body map[string]any, userID int64) int64 {
	t.Helper()
	in, err := c.ParseInput(body, 1)
	require.NoError(t, err)
	id, err := s.CreateItem(context.Background(), c, in, userID)
	require.NoError(t, err)
	return id
}
