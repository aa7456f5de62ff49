package files

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/storage"
	"github.com/purificadora/inventario/internal/store"
)

// fakeStore keeps file records in memory.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	files     map[int64]model.FileRecord
	orphans   map[int64]bool
	pending   map[int64]model.PendingCleanup
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files:   map[int64]model.FileRecord{},
		orphans: map[int64]bool{},
		pending: map[int64]model.PendingCleanup{},
	}
}

func (s *fakeStore) CreateFile(_ context.Context, f *model.FileRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	rec := *f
	rec.ID = s.nextID
	s.files[rec.ID] = rec
	return rec.ID, nil
}

func (s *fakeStore) GetFile(_ context.Context, id int64) (*model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *fakeStore) ListFiles(context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.FileRecord{}
	for _, f := range s.files {
		out = append(out, f)
	}
	return out, nil
}

func (s *fakeStore) DeleteFile(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *fakeStore) ListOrphanedFiles(context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.FileRecord{}
	for id := range s.orphans {
		if f, ok := s.files[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteFiles(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.files[id]; ok {
			delete(s.files, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) RecordPendingCleanup(_ context.Context, path, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.pending[s.nextID] = model.PendingCleanup{ID: s.nextID, Path: path, Reason: reason}
	return nil
}

func (s *fakeStore) ListPendingCleanup(context.Context) ([]model.PendingCleanup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.PendingCleanup{}
	for _, p := range s.pending {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) ResolvePendingCleanup(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	return nil
}

// flakyBlobs fails removals while failRemove is set.
type flakyBlobs struct {
	*storage.Disk
	failRemove bool
}

func (b *flakyBlobs) Remove(path string) error {
	if b.failRemove {
		return errors.New("disk busy")
	}
	return b.Disk.Remove(path)
}

func newRegistry(t *testing.T) (*Registry, *fakeStore, *flakyBlobs) {
	t.Helper()
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	blobs := &flakyBlobs{Disk: disk}
	s := newFakeStore()
	return NewRegistry(s, blobs, zap.NewNop().Sugar()), s, blobs
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRegisterAndDelete(t *testing.T) {
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	rec, err := r.Register(ctx, Upload{Name: "notas.txt", MIME: "text/plain", Body: strings.NewReader("hola")}, 7)
	require.NoError(t, err)
	assert.Equal(t, "notas.txt", rec.OriginalName)
	assert.Equal(t, int64(4), rec.Size)
	assert.Equal(t, int64(7), *rec.UploadedBy)
	assert.Empty(t, rec.Thumbnail)
	assert.True(t, exists(rec.Path))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, r.Delete(ctx, rec.ID))
	assert.False(t, exists(rec.Path))
	assert.ErrorIs(t, r.Delete(ctx, rec.ID), store.ErrNotFound)
}

func TestRegisterRejectsMissingName(t *testing.T) {
	r, _, _ := newRegistry(t)

	_, err := r.Register(context.Background(), Upload{Body: strings.NewReader("x")}, 1)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRegisterImageRendersThumbnail(t *testing.T) {
	r, _, _ := newRegistry(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 600, 300))))

	rec, err := r.Register(context.Background(), Upload{Name: "foto.png", MIME: "image/png", Body: &buf}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, rec.Thumbnail)
	assert.True(t, exists(rec.Thumbnail))

	require.NoError(t, r.Delete(context.Background(), rec.ID))
	assert.False(t, exists(rec.Thumbnail))
}

func TestRegisterRemovesBlobWhenMetadataFails(t *testing.T) {
	r, s, blobs := newRegistry(t)
	s.createErr = errors.New("db down")

	_, err := r.Register(context.Background(), Upload{Name: "a.txt", Body: strings.NewReader("x")}, 1)
	require.Error(t, err)

	entries, err := os.ReadDir(blobs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteQueuesFailedBlobRemoval(t *testing.T) {
	r, s, blobs := newRegistry(t)
	ctx := context.Background()

	rec, err := r.Register(ctx, Upload{Name: "a.txt", Body: strings.NewReader("x")}, 1)
	require.NoError(t, err)

	blobs.failRemove = true
	require.NoError(t, r.Delete(ctx, rec.ID), "record removal still succeeds")
	assert.True(t, exists(rec.Path))

	pending, err := s.ListPendingCleanup(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rec.Path, pending[0].Path)

	// The next purge finishes the removal.
	blobs.failRemove = false
	res, err := r.PurgeOrphaned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retried)
	assert.False(t, exists(rec.Path))
}

func TestPurgeOrphaned(t *testing.T) {
	r, s, _ := newRegistry(t)
	ctx := context.Background()

	kept, err := r.Register(ctx, Upload{Name: "a.txt", Body: strings.NewReader("a")}, 1)
	require.NoError(t, err)
	orphan, err := r.Register(ctx, Upload{Name: "b.txt", Body: strings.NewReader("b")}, 2)
	require.NoError(t, err)
	s.orphans[orphan.ID] = true

	res, err := r.PurgeOrphaned(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Files)
	assert.False(t, exists(orphan.Path))
	assert.True(t, exists(kept.Path))

	res, err = r.PurgeOrphaned(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Files)
}

func TestDiscard(t *testing.T) {
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	rec, err := r.Register(ctx, Upload{Name: "a.txt", Body: strings.NewReader("a")}, 1)
	require.NoError(t, err)

	r.Discard(ctx, "user deleted", []model.FileRecord{*rec})
	assert.False(t, exists(rec.Path))
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME("application/pdf", nil))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMIME("", []byte("hola")))
	assert.Equal(t, "image/png", DetectMIME("application/octet-stream", []byte("\x89PNG\r\n\x1a\n")))
}
