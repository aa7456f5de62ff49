package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/purificadora/inventario/internal/model"
)

const userColumns = `id, nombre, email, password_hash, tipo, fecha_registro`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new user. The email must not be registered yet and
// is stored normalized.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	email = model.NormalizeEmail(email)
	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	id, err := insertID(ctx, s.db,
		`INSERT INTO usuarios (nombre, email, password_hash, tipo) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, role,
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser returns a user by ID, or nil if there is none.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, or nil if there is none. Case
// and surrounding spaces are ignored.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE email = ?`, model.NormalizeEmail(email),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM usuarios ORDER BY fecha_registro DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user and their file records in one transaction.
// Masters and the acting user cannot be deleted. The removed file records
// are returned so the caller can discard their blobs.
func (s *Store) DeleteUser(ctx context.Context, actingID, targetID int64) ([]model.FileRecord, error) {
	if actingID == targetID {
		return nil, ErrSelfDelete
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx, `SELECT tipo FROM usuarios WHERE id = ?`, targetID).Scan(&role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking user: %w", err)
	}
	if role == model.RoleMaster {
		return nil, ErrProtectedUser
	}

	files, err := listFiles(ctx, tx, `WHERE a.subido_por = ?`, targetID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM archivos WHERE subido_por = ?`, targetID); err != nil {
		return nil, fmt.Errorf("deleting user files: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM usuarios WHERE id = ?`, targetID)
	if err != nil {
		return nil, fmt.Errorf("deleting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deleting user: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user deletion: %w", err)
	}
	return files, nil
}

// EnsureMaster creates the master account unless a user with the email
// already exists. It reports whether a new account was created.
func (s *Store) EnsureMaster(ctx context.Context, name, email, passwordHash string) (*model.User, bool, error) {
	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	u, err := s.CreateUser(ctx, name, email, passwordHash, model.RoleMaster)
	if err != nil {
		return nil, false, fmt.Errorf("creating master user: %w", err)
	}
	return u, true, nil
}
