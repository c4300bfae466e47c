package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/pkg/jobs"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

type archivePayload struct {
	filename string
	data     []byte
}

// ExportArchive keeps a rolling on-disk copy of every rendered export.
// Writes go through a background queue so download responses never wait on
// disk, and files older than the retention TTL are swept on startup.
type ExportArchive struct {
	store     *storage.LocalStorage
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
}

// NewExportArchive wires the archive on top of the given directory.
func NewExportArchive(dir string, retention time.Duration, logger *zap.Logger) (*ExportArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	a := &ExportArchive{store: store, retention: retention, logger: logger}
	a.queue = jobs.NewQueue("export-archive", a.handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return a, nil
}

// Start launches the archive worker and sweeps expired files.
func (a *ExportArchive) Start(ctx context.Context) {
	a.queue.Start(ctx)
	if deleted, err := a.store.CleanupOlderThan(a.retention); err != nil {
		a.logger.Warn("export archive cleanup failed", zap.Error(err))
	} else if len(deleted) > 0 {
		a.logger.Info("export archive cleaned up", zap.Int("deleted", len(deleted)))
	}
}

// Stop drains the archive worker.
func (a *ExportArchive) Stop() {
	a.queue.Stop()
}

// Save queues one rendered export for archival. Safe on a nil receiver so
// callers can pass a disabled archive straight through.
func (a *ExportArchive) Save(filename string, payload []byte) {
	if a == nil {
		return
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	job := jobs.Job{
		ID:      fmt.Sprintf("%s-%d", filename, time.Now().UnixNano()),
		Type:    "archive",
		Payload: archivePayload{filename: filename, data: data},
	}
	if err := a.queue.Enqueue(job); err != nil {
		a.logger.Warn("export archive enqueue failed", zap.String("file", filename), zap.Error(err))
	}
}

func (a *ExportArchive) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload type %T", job.Payload)
	}
	if _, err := a.store.Save(payload.filename, payload.data); err != nil {
		return err
	}
	a.logger.Debug("export archived", zap.String("file", payload.filename))
	return nil
}
