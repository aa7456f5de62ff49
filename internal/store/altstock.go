package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/purificadora/inventario/internal/model"
)

// InitialAltStock is recorded in an empty jug ledger on startup.
var InitialAltStock = map[string]int{
	model.ProductJugs:  125,
	model.ProductCaps:  350,
	model.ProductSeals: 210,
}

const altStockSum = `SELECT producto,
        COALESCE(SUM(CASE WHEN tipo = 'entrada' THEN cantidad ELSE -cantidad END), 0)
 FROM movimientos_garrafones`

// AltStock derives jug, cap and seal stock from the jug ledger. Products
// without records count as zero.
func (s *Store) AltStock(ctx context.Context) (model.Stock, error) {
	stock := model.Stock{Source: model.StockFromLedger}

	rows, err := s.db.QueryContext(ctx, altStockSum+` GROUP BY producto`)
	if err != nil {
		return stock, fmt.Errorf("summing jug ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var product string
		var qty int64
		if err := rows.Scan(&product, &qty); err != nil {
			return stock, fmt.Errorf("scanning jug ledger: %w", err)
		}
		stock.Set(product, qty)
	}
	return stock, rows.Err()
}

// InventoryStock derives jug, cap and seal stock from the garrafones
// inventory category instead of the jug ledger.
func (s *Store) InventoryStock(ctx context.Context) (model.Stock, error) {
	stock := model.Stock{Source: model.StockFromInventory}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tipo, COALESCE(SUM(cantidad), 0) FROM inventario_garrafones GROUP BY tipo`,
	)
	if err != nil {
		return stock, fmt.Errorf("summing jug inventory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemType string
		var qty int64
		if err := rows.Scan(&itemType, &qty); err != nil {
			return stock, fmt.Errorf("scanning jug inventory: %w", err)
		}
		if product := model.JugProduct(itemType); product != "" {
			stock.Set(product, stock.Get(product)+qty)
		}
	}
	return stock, rows.Err()
}

// RecordAltMovement appends a record to the jug ledger. Outgoing records
// larger than the derived stock fail with ErrInsufficientStock.
func (s *Store) RecordAltMovement(ctx context.Context, direction, product string, quantity int, description string, userID int64) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if direction == model.DirectionOut {
		var current int64
		err := tx.QueryRowContext(ctx, altStockSum+` WHERE producto = ? GROUP BY producto`, product).Scan(&product, &current)
		if err != nil && err != sql.ErrNoRows {
			return 0, fmt.Errorf("checking jug ledger: %w", err)
		}
		if current < int64(quantity) {
			return 0, fmt.Errorf("%w: %d %s on hand, %d requested", ErrInsufficientStock, current, product, quantity)
		}
	}

	id, err := insertID(ctx, tx,
		`INSERT INTO movimientos_garrafones (tipo, producto, cantidad, descripcion, usuario_id) VALUES (?, ?, ?, ?, ?)`,
		direction, product, quantity, nullString(description), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("recording jug ledger movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing jug ledger movement: %w", err)
	}
	return id, nil
}

// ListAltMovements returns the most recent jug ledger records, newest first.
func (s *Store) ListAltMovements(ctx context.Context, limit int) ([]model.AltMovement, error) {
	if limit <= 0 || limit > MaxMovementLimit {
		limit = DefaultMovementLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tipo, producto, cantidad, descripcion, usuario_id, fecha
		 FROM movimientos_garrafones ORDER BY fecha DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing jug ledger: %w", err)
	}
	defer rows.Close()

	records := []model.AltMovement{}
	for rows.Next() {
		var m model.AltMovement
		var desc sql.NullString
		var userID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Direction, &m.Product, &m.Quantity, &desc, &userID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning jug ledger: %w", err)
		}
		m.Description = stringPtr(desc)
		m.UserID = int64Ptr(userID)
		records = append(records, m)
	}
	return records, rows.Err()
}

// SeedAltStock records InitialAltStock when the jug ledger is empty. It
// reports whether anything was written.
func (s *Store) SeedAltStock(ctx context.Context, userID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM movimientos_garrafones`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting jug ledger: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, product := range model.Products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO movimientos_garrafones (tipo, producto, cantidad, descripcion, usuario_id) VALUES (?, ?, ?, ?, ?)`,
			model.DirectionIn, product, InitialAltStock[product], "Stock inicial", userID,
		)
		if err != nil {
			return false, fmt.Errorf("seeding jug ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing jug ledger seed: %w", err)
	}
	return true, nil
}
