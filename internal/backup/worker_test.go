package backup

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"imobiliaria-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	rows []models.MidiaBackup
}

func (s *memStore) InsertMedia(m *models.MidiaBackup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uint(len(s.rows) + 1)
	s.rows = append(s.rows, *m)
	return nil
}

func (s *memStore) all() []models.MidiaBackup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MidiaBackup{}, s.rows...)
}

// diskResolver maps "/uploads/..." URLs onto a temp dir.
type diskResolver struct {
	root string
}

func (r *diskResolver) Resolve(publicURL string) (string, error) {
	return filepath.Join(r.root, filepath.Base(publicURL)), nil
}

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
	return "/uploads/imoveis/" + name
}

func TestWorkerArchivesAllFiles(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	worker := NewWorker(store, &diskResolver{root: dir}, 10)
	worker.Start()
	defer worker.Stop()

	foto := writeTestFile(t, dir, "a.jpg", []byte("jpeg-bytes"))
	video := writeTestFile(t, dir, "b.mp4", []byte("mp4-bytes"))

	job := worker.Enqueue(7, []string{foto}, []string{video})
	require.True(t, job.Wait(5*time.Second))

	assert.Equal(t, 2, job.Archived())
	rows := store.all()
	require.Len(t, rows, 2)

	assert.Equal(t, uint(7), rows[0].ImovelID)
	assert.Equal(t, models.MidiaTipoImagem, rows[0].TipoMidia)
	assert.Equal(t, "a.jpg", rows[0].NomeArquivo)
	assert.Equal(t, int64(len("jpeg-bytes")), rows[0].Tamanho)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256([]byte("jpeg-bytes"))), rows[0].Checksum)
	assert.Contains(t, rows[0].MimeType, "image/jpeg")

	assert.Equal(t, models.MidiaTipoVideo, rows[1].TipoMidia)
	assert.Equal(t, "b.mp4", rows[1].NomeArquivo)
}

func TestWorkerSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	worker := NewWorker(store, &diskResolver{root: dir}, 10)
	worker.Start()
	defer worker.Stop()

	good := writeTestFile(t, dir, "ok.png", []byte("png"))

	job := worker.Enqueue(3, []string{"/uploads/imoveis/missing.png", good}, nil)
	require.True(t, job.Wait(5*time.Second))

	// The missing file is logged and skipped, the rest still lands
	assert.Equal(t, 1, job.Archived())
	rows := store.all()
	require.Len(t, rows, 1)
	assert.Equal(t, "ok.png", rows[0].NomeArquivo)
}

func TestEnqueueEmptyJobCompletesImmediately(t *testing.T) {
	worker := NewWorker(&memStore{}, &diskResolver{root: t.TempDir()}, 10)
	// Worker not started on purpose

	job := worker.Enqueue(1, nil, nil)
	assert.True(t, job.Wait(100*time.Millisecond))
	assert.Equal(t, 0, job.Archived())
}

func TestStopDrainsQueuedJobs(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	worker := NewWorker(store, &diskResolver{root: dir}, 10)

	url := writeTestFile(t, dir, "c.jpg", []byte("x"))

	// Enqueue before Start so the job sits in the queue
	job := worker.Enqueue(1, []string{url}, nil)
	worker.Start()
	worker.Stop()

	require.True(t, job.Wait(time.Second))
	assert.Len(t, store.all(), 1)
}

func TestUnknownExtensionFallsBackToOctetStream(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{}
	worker := NewWorker(store, &diskResolver{root: dir}, 10)
	worker.Start()
	defer worker.Stop()

	url := writeTestFile(t, dir, "blob.zzz9", []byte("raw"))

	job := worker.Enqueue(1, []string{url}, nil)
	require.True(t, job.Wait(5*time.Second))

	rows := store.all()
	require.Len(t, rows, 1)
	assert.Equal(t, "application/octet-stream", rows[0].MimeType)
}
