package model

import "time"

// FileRecord is the metadata of an uploaded file.
type FileRecord struct {
	ID           int64     `json:"id"`
	OriginalName string    `json:"nombre_original"`
	StoredName   string    `json:"nombre_archivo"`
	Path         string    `json:"ruta"`
	MIME         string    `json:"tipo_archivo"`
	Size         int64     `json:"tamano"`
	Thumbnail    string    `json:"miniatura,omitempty"`
	UploadedBy   *int64    `json:"subido_por"`
	UploaderName *string   `json:"subido_por_nombre"`
	UploadedAt   time.Time `json:"fecha_subida"`
}

// PendingCleanup is a stored blob whose removal failed after its metadata
// was already gone. It is retried by the orphan purge.
type PendingCleanup struct {
	ID        int64     `json:"id"`
	Path      string    `json:"ruta"`
	Reason    string    `json:"motivo"`
	CreatedAt time.Time `json:"fecha"`
}
