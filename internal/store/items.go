package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/purificadora/inventario/internal/model"
)

func itemSelect(c *model.Category) string {
	cols := make([]string, 0, len(c.Fields))
	for _, col := range c.Columns() {
		cols = append(cols, "t."+col)
	}
	return `SELECT t.id, ` + strings.Join(cols, ", ") + `, t.cantidad, t.usuario_registro, u.nombre,
	        t.` + c.DateColumn + `, t.fecha_actualizacion
	 FROM ` + c.Table + ` t
	 LEFT JOIN usuarios u ON u.id = t.usuario_registro`
}

func scanItem(c *model.Category, row interface{ Scan(...any) error }) (*model.Item, error) {
	it := &model.Item{Category: c, Attrs: make(map[string]*string, len(c.Fields))}
	attrs := make([]sql.NullString, len(c.Fields))
	var registeredBy sql.NullInt64
	var registeredName sql.NullString

	dest := make([]any, 0, len(attrs)+6)
	dest = append(dest, &it.ID)
	for i := range attrs {
		dest = append(dest, &attrs[i])
	}
	dest = append(dest, &it.Quantity, &registeredBy, &registeredName, &it.CreatedAt, &it.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, f := range c.Fields {
		it.Attrs[f.Name] = stringPtr(attrs[i])
	}
	it.RegisteredBy = int64Ptr(registeredBy)
	it.RegisteredByName = stringPtr(registeredName)
	return it, nil
}

// ListItems returns every item of the category, newest registered first.
func (s *Store) ListItems(ctx context.Context, c *model.Category) ([]*model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		itemSelect(c)+` ORDER BY t.`+c.DateColumn+` DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s items: %w", c.Name, err)
	}
	defer rows.Close()

	items := []*model.Item{}
	for rows.Next() {
		it, err := scanItem(c, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s item: %w", c.Name, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem returns an item by ID, or nil if there is none.
func (s *Store) GetItem(ctx context.Context, c *model.Category, id int64) (*model.Item, error) {
	it, err := scanItem(c, s.db.QueryRowContext(ctx, itemSelect(c)+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s item: %w", c.Name, err)
	}
	return it, nil
}

// CreateItem inserts an item and its initial "entrada" movement in one
// transaction and returns the new item's ID.
func (s *Store) CreateItem(ctx context.Context, c *model.Category, in model.ItemInput, userID int64) (int64, error) {
	if in.Quantity <= 0 {
		return 0, fmt.Errorf("initial quantity must be positive")
	}

	cols := c.Columns()
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		args = append(args, nullString(in.Attrs[col]))
	}
	args = append(args, in.Quantity, userID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertID(ctx, tx,
		`INSERT INTO `+c.Table+` (`+strings.Join(cols, ", ")+`, cantidad, usuario_registro)
		 VALUES (`+placeholders(len(cols)+2)+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("creating %s item: %w", c.Name, err)
	}

	err = insertMovement(ctx, tx, c.Name, id, model.DirectionIn, in.Quantity, userID,
		"Ingreso inicial: "+in.Name(c))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s item: %w", c.Name, err)
	}
	return id, nil
}

// UpdateItem replaces an item's descriptive fields and quantity. It does
// not record a movement.
func (s *Store) UpdateItem(ctx context.Context, c *model.Category, id int64, in model.ItemInput) error {
	cols := c.Columns()
	sets := make([]string, 0, len(cols)+2)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, nullString(in.Attrs[col]))
	}
	sets = append(sets, "cantidad = ?", "fecha_actualizacion = CURRENT_TIMESTAMP")
	args = append(args, in.Quantity, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+c.Table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("updating %s item: %w", c.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s item: %w", c.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes an item together with its movement history.
func (s *Store) DeleteItem(ctx context.Context, c *model.Category, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.Table+` WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking %s item: %w", c.Name, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM movimientos_inventario WHERE tipo_inventario = ? AND item_id = ?`, c.Name, id,
	); err != nil {
		return fmt.Errorf("deleting %s item movements: %w", c.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+c.Table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting %s item: %w", c.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s item deletion: %w", c.Name, err)
	}
	return nil
}
