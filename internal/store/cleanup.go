package store

import (
	"context"
	"fmt"

	"github.com/purificadora/inventario/internal/model"
)

// RecordPendingCleanup remembers a blob path whose removal failed.
func (s *Store) RecordPendingCleanup(ctx context.Context, path, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO limpieza_pendiente (ruta, motivo) VALUES (?, ?) ON CONFLICT (ruta) DO NOTHING`,
		path, reason,
	)
	if err != nil {
		return fmt.Errorf("recording pending cleanup: %w", err)
	}
	return nil
}

// ListPendingCleanup returns blob paths still waiting for removal, oldest first.
func (s *Store) ListPendingCleanup(ctx context.Context) ([]model.PendingCleanup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ruta, motivo, fecha FROM limpieza_pendiente ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending cleanup: %w", err)
	}
	defer rows.Close()

	pending := []model.PendingCleanup{}
	for rows.Next() {
		var p model.PendingCleanup
		if err := rows.Scan(&p.ID, &p.Path, &p.Reason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending cleanup: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// ResolvePendingCleanup forgets a pending removal once the blob is gone.
func (s *Store) ResolvePendingCleanup(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM limpieza_pendiente WHERE id = ?`, id); err != nil {
		return fmt.Errorf("resolving pending cleanup: %w", err)
	}
	return nil
}
