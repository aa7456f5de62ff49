package db

import (
	"context"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid on every supported dialect.
// Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_movimientos_item
	     ON movimientos_inventario(tipo_inventario, item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movimientos_fecha
	     ON movimientos_inventario(fecha_movimiento)`,
	`CREATE INDEX IF NOT EXISTS idx_archivos_subido_por
	     ON archivos(subido_por)`,
	`CREATE INDEX IF NOT EXISTS idx_movimientos_garrafones_producto
	     ON movimientos_garrafones(producto)`,
}

func migrate(ctx context.Context, db *DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
