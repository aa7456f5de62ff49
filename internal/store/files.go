package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/purificadora/inventario/internal/model"
)

const fileSelect = `SELECT a.id, a.nombre_original, a.nombre_archivo, a.ruta, a.tipo_archivo, a.tamano,
        a.miniatura, a.subido_por, u.nombre, a.fecha_subida
 FROM archivos a
 LEFT JOIN usuarios u ON u.id = a.subido_por`

func scanFile(row interface{ Scan(...any) error }) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	var thumb, uploader sql.NullString
	var uploadedBy sql.NullInt64
	if err := row.Scan(&f.ID, &f.OriginalName, &f.StoredName, &f.Path, &f.MIME, &f.Size,
		&thumb, &uploadedBy, &uploader, &f.UploadedAt); err != nil {
		return nil, err
	}
	f.Thumbnail = thumb.String
	f.UploadedBy = int64Ptr(uploadedBy)
	f.UploaderName = stringPtr(uploader)
	return f, nil
}

func listFiles(ctx context.Context, q querier, where string, args ...any) ([]model.FileRecord, error) {
	rows, err := q.QueryContext(ctx,
		fileSelect+" "+where+` ORDER BY a.fecha_subida DESC, a.id DESC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	files := []model.FileRecord{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// CreateFile registers the metadata of a stored blob and returns its ID.
func (s *Store) CreateFile(ctx context.Context, f *model.FileRecord) (int64, error) {
	id, err := insertID(ctx, s.db,
		`INSERT INTO archivos (nombre_original, nombre_archivo, ruta, tipo_archivo, tamano, miniatura, subido_por)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.OriginalName, f.StoredName, f.Path, f.MIME, f.Size, nullString(f.Thumbnail), f.UploadedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	return id, nil
}

// GetFile returns a file record by ID, or nil if there is none.
func (s *Store) GetFile(ctx context.Context, id int64) (*model.FileRecord, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx, fileSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}
	return f, nil
}

// ListFiles returns all file records, newest first.
func (s *Store) ListFiles(ctx context.Context) ([]model.FileRecord, error) {
	return listFiles(ctx, s.db, "")
}

// ListOrphanedFiles returns file records whose uploader no longer exists.
func (s *Store) ListOrphanedFiles(ctx context.Context) ([]model.FileRecord, error) {
	return listFiles(ctx, s.db, `WHERE u.id IS NULL`)
}

// DeleteFile removes a file record.
func (s *Store) DeleteFile(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM archivos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFiles removes the given file records and returns how many were removed.
func (s *Store) DeleteFiles(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM archivos WHERE id IN (`+placeholders(len(ids))+`)`, args...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting files: %w", err)
	}
	return n, nil
}
