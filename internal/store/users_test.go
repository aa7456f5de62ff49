package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purificadora/inventario/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, s, "Ana", "ana@example.com", model.RoleGuest)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, model.RoleGuest, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ana@example.com", got.Email)

	byEmail, err := s.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := s.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, s, "Ana", "ana@example.com", model.RoleGuest)

	_, err := s.CreateUser(context.Background(), "Otra", "ana@example.com", "hash", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, s, "Ana", "ana@example.com", model.RoleGuest)
	mustUser(t, s, "Beto", "beto@example.com", model.RoleAdmin)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Beto", users[0].Name, "newest first")
}

func TestDeleteUserRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	master := mustUser(t, s, "Maestro", "m@example.com", model.RoleMaster)
	other := mustUser(t, s, "Otro Maestro", "m2@example.com", model.RoleMaster)

	_, err := s.DeleteUser(ctx, master.ID, master.ID)
	assert.ErrorIs(t, err, ErrSelfDelete)

	_, err = s.DeleteUser(ctx, master.ID, other.ID)
	assert.ErrorIs(t, err, ErrProtectedUser)

	_, err = s.DeleteUser(ctx, master.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascadesFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	master := mustUser(t, s, "Maestro", "m@example.com", model.RoleMaster)
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)

	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := s.CreateFile(ctx, &model.FileRecord{
			OriginalName: name, StoredName: name, Path: "/tmp/" + name,
			MIME: "application/pdf", Size: 10, UploadedBy: &admin.ID,
		})
		require.NoError(t, err)
	}
	_, err := s.CreateFile(ctx, &model.FileRecord{
		OriginalName: "keep.pdf", StoredName: "keep.pdf", Path: "/tmp/keep.pdf",
		MIME: "application/pdf", Size: 10, UploadedBy: &master.ID,
	})
	require.NoError(t, err)

	removed, err := s.DeleteUser(ctx, master.ID, admin.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	gone, err := s.GetUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	files, err := s.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "keep.pdf", files[0].OriginalName)
}

func TestDeleteUserKeepsInventoryAndMovements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	master := mustUser(t, s, "Maestro", "m@example.com", model.RoleMaster)
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)
	id := mustItem(t, s, model.Office, map[string]any{"nombre": "Papel", "cantidad": float64(5)}, admin.ID)

	_, err := s.DeleteUser(ctx, master.ID, admin.ID)
	require.NoError(t, err)

	item, err := s.GetItem(ctx, model.Office, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.RegisteredBy)

	movements, err := s.ListMovements(ctx, MovementFilter{ItemID: id})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Nil(t, movements[0].UserID)
}

func TestEnsureMaster(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, created, err := s.EnsureMaster(ctx, "Maestro", "m@example.com", "hash")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleMaster, u.Role)

	again, created, err := s.EnsureMaster(ctx, "Maestro", "m@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}

func TestEmailLookupIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, created, err := s.EnsureMaster(ctx, "Maestro", " Admin@Empresa.com ", "hash")
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "admin@empresa.com", u.Email)

	found, err := s.GetUserByEmail(ctx, "ADMIN@empresa.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.CreateUser(ctx, "Otro", "admin@EMPRESA.com", "hash", model.RoleGuest)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser(context.Background(), "Nadie", "nadie@example.com", "hash", "superuser")
	require.Error(t, err)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
