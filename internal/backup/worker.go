package backup

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"imobiliaria-portal/internal/models"
)

// Store is where archived copies land (the backup database).
type Store interface {
	InsertMedia(m *models.MidiaBackup) error
}

// Resolver maps public upload URLs to disk paths.
type Resolver interface {
	Resolve(publicURL string) (string, error)
}

// Job is one backup request covering the media of a single listing.
type Job struct {
	ImovelID uint
	Fotos    []string
	Videos   []string

	archived int
	done     chan struct{}
}

// Wait blocks until the job finishes or the timeout elapses. Returns true
// when the job completed within the timeout. Callers are not required to
// wait; an unawaited job still runs to completion.
func (j *Job) Wait(timeout time.Duration) bool {
	select {
	case <-j.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Archived returns how many files were successfully archived. Only valid
// after Wait returned true.
func (j *Job) Archived() int {
	return j.archived
}

// Worker archives uploaded media bytes into the backup store. Jobs are
// processed one at a time in enqueue order; a failure on one file is logged
// and never aborts the rest of the job or the triggering request.
type Worker struct {
	store     Store
	uploads   Resolver
	jobs      chan *Job
	stopChan  chan struct{}
	stopped   chan struct{}
	isRunning bool
}

// NewWorker creates a backup worker with a bounded job queue.
func NewWorker(store Store, uploads Resolver, queueSize int) *Worker {
	if queueSize < 1 {
		queueSize = 100
	}
	return &Worker{
		store:    store,
		uploads:  uploads,
		jobs:     make(chan *Job, queueSize),
		stopChan: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start starts the worker loop
func (w *Worker) Start() {
	if w.isRunning {
		log.Println("BackupWorker: Already running")
		return
	}
	w.isRunning = true
	log.Printf("BackupWorker: Started (queue_size=%d)", cap(w.jobs))
	go w.run()
}

// Stop stops the worker after draining queued jobs
func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}
	log.Println("BackupWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
	<-w.stopped
}

// Enqueue schedules a backup of the given media URLs. Never blocks: when the
// queue is full the job is dropped with a log line (backup is best-effort).
func (w *Worker) Enqueue(imovelID uint, fotos, videos []string) *Job {
	job := &Job{
		ImovelID: imovelID,
		Fotos:    fotos,
		Videos:   videos,
		done:     make(chan struct{}),
	}

	if len(fotos)+len(videos) == 0 {
		close(job.done)
		return job
	}

	select {
	case w.jobs <- job:
	default:
		log.Printf("BackupWorker: Queue full, dropping job for imovel_id=%d (%d files)",
			imovelID, len(fotos)+len(videos))
		close(job.done)
	}
	return job
}

func (w *Worker) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.stopChan:
			// Drain whatever is already queued before exiting
			for {
				select {
				case job := <-w.jobs:
					w.processJob(job)
				default:
					log.Println("BackupWorker: Stopped")
					return
				}
			}
		case job := <-w.jobs:
			w.processJob(job)
		}
	}
}

// processJob archives each file of a job in input order
func (w *Worker) processJob(job *Job) {
	defer close(job.done)

	for _, url := range job.Fotos {
		if err := w.archiveOne(job.ImovelID, url, models.MidiaTipoImagem); err != nil {
			log.Printf("BackupWorker: Failed to archive imovel_id=%d url=%s: %v", job.ImovelID, url, err)
			continue
		}
		job.archived++
	}
	for _, url := range job.Videos {
		if err := w.archiveOne(job.ImovelID, url, models.MidiaTipoVideo); err != nil {
			log.Printf("BackupWorker: Failed to archive imovel_id=%d url=%s: %v", job.ImovelID, url, err)
			continue
		}
		job.archived++
	}

	log.Printf("BackupWorker: imovel_id=%d archived=%d/%d",
		job.ImovelID, job.archived, len(job.Fotos)+len(job.Videos))
}

// archiveOne reads one uploaded file and appends a backup row
func (w *Worker) archiveOne(imovelID uint, publicURL, tipo string) error {
	path, err := w.uploads.Resolve(publicURL)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	ext := filepath.Ext(path)
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	checksum := fmt.Sprintf("%x", sha256.Sum256(data))
	metadados, _ := json.Marshal(map[string]string{
		"extensao":     ext,
		"capturado_em": time.Now().Format(time.RFC3339),
	})

	media := &models.MidiaBackup{
		ImovelID:    imovelID,
		URLOriginal: publicURL,
		TipoMidia:   tipo,
		NomeArquivo: filepath.Base(path),
		MimeType:    mimeType,
		Dados:       data,
		Tamanho:     int64(len(data)),
		Checksum:    checksum,
		Metadados:   metadados,
	}

	if err := w.store.InsertMedia(media); err != nil {
		return fmt.Errorf("insert backup row: %w", err)
	}
	return nil
}
