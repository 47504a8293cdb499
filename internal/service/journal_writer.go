package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/jobs"
)

// JournalWriter moves batch journal inserts off the submission path. Writes are retried in the
// background and reads go straight to the store.
type JournalWriter struct {
	store   batchJournal
	queue   *jobs.Queue[*models.BatchJournalEntry]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewJournalWriter wraps store with a retrying write queue. Call Start before use and Close on shutdown.
func NewJournalWriter(store batchJournal, metrics *MetricsService, logger *zap.Logger, cfg jobs.Config) *JournalWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &JournalWriter{store: store, metrics: metrics, logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	w.queue = jobs.New("batch-journal", w.write, cfg)
	return w
}

// Start launches the write workers.
func (w *JournalWriter) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Insert queues entry for persistence.
func (w *JournalWriter) Insert(_ context.Context, entry *models.BatchJournalEntry) error {
	if err := w.queue.Enqueue(jobs.Job[*models.BatchJournalEntry]{ID: entry.BatchID, Payload: entry}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "batch journal unavailable")
	}
	return nil
}

// ListRecent reads committed entries. Queued writes are not visible until they land.
func (w *JournalWriter) ListRecent(ctx context.Context, limit int) ([]models.BatchJournalEntry, error) {
	return w.store.ListRecent(ctx, limit)
}

// Close flushes queued writes, giving up when ctx expires.
func (w *JournalWriter) Close(ctx context.Context) error {
	return w.queue.Close(ctx)
}

func (w *JournalWriter) write(ctx context.Context, job jobs.Job[*models.BatchJournalEntry]) error {
	start := time.Now()
	err := w.store.Insert(ctx, job.Payload)
	w.metrics.ObserveJournalWrite(time.Since(start))
	return err
}
