package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/purificadora/inventario/internal/model"
)

// Movement listing limits.
const (
	DefaultMovementLimit = 50
	MaxMovementLimit     = 500
)

// MovementFilter narrows a movement listing. Zero values mean no filter.
type MovementFilter struct {
	Category string
	ItemID   int64
	Limit    int
}

func insertMovement(ctx context.Context, q querier, category string, itemID int64, direction string, quantity int, userID int64, notes string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO movimientos_inventario (tipo_inventario, item_id, movimiento, cantidad, usuario_id, observaciones)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category, itemID, direction, quantity, userID, nullString(notes),
	)
	if err != nil {
		return fmt.Errorf("recording movement: %w", err)
	}
	return nil
}

// ListMovements returns the most recent movements, newest first, joined with
// the acting user's name.
func (s *Store) ListMovements(ctx context.Context, f MovementFilter) ([]model.Movement, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultMovementLimit
	}
	if limit > MaxMovementLimit {
		limit = MaxMovementLimit
	}

	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "m.tipo_inventario = ?")
		args = append(args, f.Category)
	}
	if f.ItemID != 0 {
		where = append(where, "m.item_id = ?")
		args = append(args, f.ItemID)
	}
	query := `SELECT m.id, m.tipo_inventario, m.item_id, m.movimiento, m.cantidad, m.usuario_id,
	                 u.nombre, m.observaciones, m.fecha_movimiento
	          FROM movimientos_inventario m
	          LEFT JOIN usuarios u ON u.id = m.usuario_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY m.fecha_movimiento DESC, m.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	movements := []model.Movement{}
	for rows.Next() {
		var m model.Movement
		var userID sql.NullInt64
		var userName, notes sql.NullString
		if err := rows.Scan(&m.ID, &m.Category, &m.ItemID, &m.Direction, &m.Quantity, &userID,
			&userName, &notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.UserID = int64Ptr(userID)
		m.UserName = stringPtr(userName)
		m.Notes = stringPtr(notes)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
