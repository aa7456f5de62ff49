package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/purificadora/inventario/internal/model"
)

// AdjustQuantity moves stock in or out of an item and records the movement
// in the same transaction. Outgoing movements larger than the stock on hand
// fail with ErrInsufficientStock and change nothing. Returns the new quantity.
func (s *Store) AdjustQuantity(ctx context.Context, c *model.Category, id int64, adj model.Adjustment, userID int64) (int, error) {
	if adj.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}
	if !model.ValidDirection(adj.Direction) {
		return 0, fmt.Errorf("unknown movement direction %q", adj.Direction)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT cantidad FROM `+c.Table+` WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("checking current quantity: %w", err)
	}

	var res sql.Result
	if adj.Direction == model.DirectionOut {
		if current < adj.Quantity {
			return 0, fmt.Errorf("%w: %d on hand, %d requested", ErrInsufficientStock, current, adj.Quantity)
		}
		// The guard keeps a concurrent withdrawal from driving stock negative.
		res, err = tx.ExecContext(ctx,
			`UPDATE `+c.Table+` SET cantidad = cantidad - ?, fecha_actualizacion = CURRENT_TIMESTAMP
			 WHERE id = ? AND cantidad >= ?`,
			adj.Quantity, id, adj.Quantity,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE `+c.Table+` SET cantidad = cantidad + ?, fecha_actualizacion = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			adj.Quantity, id,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("adjusting quantity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adjusting quantity: %w", err)
	}
	if n == 0 {
		return 0, ErrInsufficientStock
	}

	var updated int
	if err := tx.QueryRowContext(ctx, `SELECT cantidad FROM `+c.Table+` WHERE id = ?`, id).Scan(&updated); err != nil {
		return 0, fmt.Errorf("reading new quantity: %w", err)
	}

	if err := insertMovement(ctx, tx, c.Name, id, adj.Direction, adj.Quantity, userID, adj.Notes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing adjustment: %w", err)
	}
	return updated, nil
}
