// Package files ties uploaded blobs to their metadata records.
package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/imaging"
	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/storage"
	"github.com/purificadora/inventario/internal/store"
)

// Store is the metadata persistence the registry needs.
type Store interface {
	CreateFile(ctx context.Context, f *model.FileRecord) (int64, error)
	GetFile(ctx context.Context, id int64) (*model.FileRecord, error)
	ListFiles(ctx context.Context) ([]model.FileRecord, error)
	DeleteFile(ctx context.Context, id int64) error
	ListOrphanedFiles(ctx context.Context) ([]model.FileRecord, error)
	DeleteFiles(ctx context.Context, ids []int64) (int64, error)
	RecordPendingCleanup(ctx context.Context, path, reason string) error
	ListPendingCleanup(ctx context.Context) ([]model.PendingCleanup, error)
	ResolvePendingCleanup(ctx context.Context, id int64) error
}

// Blobs stores file contents.
type Blobs interface {
	Save(originalName string, r io.Reader) (*storage.Blob, error)
	SaveAs(name string, data []byte) (*storage.Blob, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// Registry registers, lists and removes uploaded files.
type Registry struct {
	store Store
	blobs Blobs
	log   *zap.SugaredLogger
}

// NewRegistry returns a Registry.
func NewRegistry(s Store, blobs Blobs, log *zap.SugaredLogger) *Registry {
	return &Registry{store: s, blobs: blobs, log: log}
}

// Upload is an incoming file.
type Upload struct {
	Name string
	MIME string
	Body io.Reader
}

// PurgeResult reports what a purge removed.
type PurgeResult struct {
	Files   int64 `json:"eliminados"`
	Retried int   `json:"reintentados"`
}

// Register stores the upload's contents and records its metadata. JPEG and
// PNG uploads also get a preview; failing to render one is logged only.
func (r *Registry) Register(ctx context.Context, up Upload, userID int64) (*model.FileRecord, error) {
	name := filepath.Base(strings.TrimSpace(up.Name))
	if name == "" || name == "." || name == "/" {
		return nil, &model.ValidationError{Message: "No se subió ningún archivo"}
	}

	blob, err := r.blobs.Save(name, up.Body)
	if err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	mime := up.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}

	rec := &model.FileRecord{
		OriginalName: name,
		StoredName:   blob.Name,
		Path:         blob.Path,
		MIME:         mime,
		Size:         blob.Size,
		UploadedBy:   &userID,
	}
	if imaging.Supported[mime] {
		rec.Thumbnail = r.renderThumbnail(blob)
	}

	id, err := r.store.CreateFile(ctx, rec)
	if err != nil {
		r.removeBlobs(ctx, "metadata insert failed", rec)
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

func (r *Registry) renderThumbnail(blob *storage.Blob) string {
	src, err := r.blobs.Open(blob.Path)
	if err != nil {
		r.log.Warnw("opening upload for preview", "path", blob.Path, "error", err)
		return ""
	}
	defer src.Close()

	data, err := imaging.Thumbnail(src)
	if err != nil {
		r.log.Warnw("rendering preview", "path", blob.Path, "error", err)
		return ""
	}

	thumb, err := r.blobs.SaveAs(strings.TrimSuffix(blob.Name, filepath.Ext(blob.Name))+".thumb.jpg", data)
	if err != nil {
		r.log.Warnw("storing preview", "path", blob.Path, "error", err)
		return ""
	}
	return thumb.Path
}

// List returns every file record, newest first.
func (r *Registry) List(ctx context.Context) ([]model.FileRecord, error) {
	return r.store.ListFiles(ctx)
}

// Get returns a file record, or nil if there is none.
func (r *Registry) Get(ctx context.Context, id int64) (*model.FileRecord, error) {
	return r.store.GetFile(ctx, id)
}

// Open opens a stored blob for reading.
func (r *Registry) Open(path string) (io.ReadCloser, error) {
	return r.blobs.Open(path)
}

// Delete removes a file's blob and then its record. A blob that cannot be
// removed is logged and queued for the next purge; the record is still
// deleted.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	rec, err := r.store.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return store.ErrNotFound
	}

	r.removeBlobs(ctx, "file deleted", rec)

	return r.store.DeleteFile(ctx, id)
}

// Discard removes the blobs of records that were already deleted, such as
// the files of a removed user.
func (r *Registry) Discard(ctx context.Context, reason string, recs []model.FileRecord) {
	for i := range recs {
		r.removeBlobs(ctx, reason, &recs[i])
	}
}

// PurgeOrphaned removes file records whose uploader no longer exists,
// together with their blobs, and retries queued blob removals.
func (r *Registry) PurgeOrphaned(ctx context.Context) (PurgeResult, error) {
	var res PurgeResult

	orphans, err := r.store.ListOrphanedFiles(ctx)
	if err != nil {
		return res, err
	}

	ids := make([]int64, 0, len(orphans))
	for i := range orphans {
		r.removeBlobs(ctx, "orphaned file", &orphans[i])
		ids = append(ids, orphans[i].ID)
	}

	res.Files, err = r.store.DeleteFiles(ctx, ids)
	if err != nil {
		return res, err
	}

	pending, err := r.store.ListPendingCleanup(ctx)
	if err != nil {
		return res, err
	}
	for _, p := range pending {
		if err := r.blobs.Remove(p.Path); err != nil {
			r.log.Warnw("retrying blob removal", "path", p.Path, "error", err)
			continue
		}
		if err := r.store.ResolvePendingCleanup(ctx, p.ID); err != nil {
			return res, err
		}
		res.Retried++
	}

	if res.Files > 0 || res.Retried > 0 {
		r.log.Infow("purged orphaned files", "files", res.Files, "retried", res.Retried)
	}
	return res, nil
}

// removeBlobs deletes a record's blob and preview. Failures are logged and
// queued so a later purge can finish the job.
func (r *Registry) removeBlobs(ctx context.Context, reason string, rec *model.FileRecord) {
	paths := []string{rec.Path}
	if rec.Thumbnail != "" {
		paths = append(paths, rec.Thumbnail)
	}
	for _, p := range paths {
		err := r.blobs.Remove(p)
		if err == nil {
			continue
		}
		r.log.Warnw("removing blob", "path", p, "file_id", rec.ID, "reason", reason, "error", err)
		if qerr := r.store.RecordPendingCleanup(ctx, p, reason); qerr != nil {
			r.log.Errorw("queueing blob removal", "path", p, "error", qerr)
		}
	}
}

// DetectMIME returns the declared content type, or sniffs one from head
// when none was declared.
func DetectMIME(declared string, head []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(head)
}
