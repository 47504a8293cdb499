package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/attendance"
	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

type batchClient interface {
	attendance.Marker
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

// DraftStore persists batch drafts and their submission locks.
type DraftStore interface {
	Get(ctx context.Context, id string) (*models.BatchDraft, error)
	Save(ctx context.Context, draft *models.BatchDraft) error
	Delete(ctx context.Context, id string) error
	Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
	Locked(ctx context.Context, id string) (bool, error)
}

type batchJournal interface {
	Insert(ctx context.Context, entry *models.BatchJournalEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.BatchJournalEntry, error)
}

// BatchServiceConfig tunes batch submission.
type BatchServiceConfig struct {
	SubmitTimeout time.Duration
	Location      *time.Location
}

// BatchServiceParams groups constructor dependencies. Journal may be nil.
type BatchServiceParams struct {
	Client  batchClient
	Drafts  DraftStore
	Journal batchJournal
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  BatchServiceConfig
}

// BatchService manages batch attendance drafts for a single target date each.
type BatchService struct {
	client  batchClient
	drafts  DraftStore
	journal batchJournal
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	cfg     BatchServiceConfig
}

// NewBatchService constructs a BatchService with sane defaults.
func NewBatchService(params BatchServiceParams) *BatchService {
	cfg := params.Config
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		client:  params.Client,
		drafts:  params.Drafts,
		journal: params.Journal,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		cfg:     cfg,
	}
}

// Create starts a draft for date with every employee Present. An empty date means today in tz,
// or in the configured zone when tz is empty.
func (s *BatchService) Create(ctx context.Context, date, tz string) (*models.BatchDraft, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		today, err := dateProvider(s.now, tz, s.cfg.Location)
		if err != nil {
			return nil, err
		}
		date = today()
	}
	if !attendance.ValidDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be a date formatted YYYY-MM-DD")
	}

	employees, err := s.client.ListEmployees(ctx)
	if err != nil {
		return nil, upstreamError(err, msgListEmployeesFailed)
	}
	composer := attendance.NewComposer(date)
	composer.Load(employees)

	now := s.now().UTC()
	draft := &models.BatchDraft{
		ID:        s.newID(),
		Date:      composer.Date(),
		Entries:   composer.Entries(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.logger.Debug("batch draft created", zap.String("batch_id", draft.ID), zap.String("date", date), zap.Int("employees", len(draft.Entries)))
	return draft, nil
}

// Get returns a draft with its in-flight flag.
func (s *BatchService) Get(ctx context.Context, id string) (*models.BatchDraft, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	locked, err := s.drafts.Locked(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch draft")
	}
	draft.Submitting = locked
	return draft, nil
}

// SetDate retargets a draft. Statuses are kept.
func (s *BatchService) SetDate(ctx context.Context, id, date string) (*models.BatchDraft, error) {
	date = strings.TrimSpace(date)
	if !attendance.ValidDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be a date formatted YYYY-MM-DD")
	}
	return s.mutate(ctx, id, func(c *attendance.Composer) error {
		c.SetDate(date)
		return nil
	})
}

// Toggle flips one employee between Present and Absent.
func (s *BatchService) Toggle(ctx context.Context, id, employeeID string) (*models.BatchDraft, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	return s.mutate(ctx, id, func(c *attendance.Composer) error {
		if _, ok := c.Toggle(employeeID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "employee "+employeeID+" is not part of this batch")
		}
		return nil
	})
}

// Refresh reloads the employee list into the draft. Known employees keep their status.
func (s *BatchService) Refresh(ctx context.Context, id string) (*models.BatchDraft, error) {
	employees, err := s.client.ListEmployees(ctx)
	if err != nil {
		return nil, upstreamError(err, msgListEmployeesFailed)
	}
	return s.mutate(ctx, id, func(c *attendance.Composer) error {
		c.Load(employees)
		return nil
	})
}

// Discard drops a draft.
func (s *BatchService) Discard(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard batch draft")
	}
	return nil
}

// Submit marks every entry of the draft concurrently and waits for all calls to settle.
// Only one submission per draft runs at a time. The work is detached from ctx cancellation and bounded
// by the configured submit timeout. Per-item failures are logged and journaled; the caller receives a
// single message and aggregate counts. Afterwards the employee list is reloaded and every status reset to Present.
func (s *BatchService) Submit(ctx context.Context, id string) (*models.BatchSubmitResult, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	acquired, err := s.drafts.Acquire(ctx, id, s.cfg.SubmitTimeout+30*time.Second)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock batch draft")
	}
	if !acquired {
		return nil, appErrors.ErrBatchInFlight
	}
	defer func() {
		if err := s.drafts.Release(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("batch lock release failed", zap.String("batch_id", id), zap.Error(err))
		}
	}()

	// Mutations saved before the lock was taken must be part of this submission.
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	composer := attendance.Restore(draft.Date, draft.Entries)
	if !composer.CanSubmit() {
		return nil, appErrors.ErrNoEmployees
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SubmitTimeout)
	defer cancel()

	start := time.Now()
	outcome, err := composer.Submit(runCtx, s.client)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordBatch(outcome.Succeeded, outcome.Failed, time.Since(start))
	s.report(runCtx, id, outcome)

	employees, err := s.client.ListEmployees(runCtx)
	if err != nil {
		s.logger.Warn("employee reload after batch failed, resetting current entries", zap.String("batch_id", id), zap.Error(err))
		employees = employeesFromEntries(composer.Entries())
	}
	composer.Reset(employees)

	summary := outcome.Summary()
	draft.Entries = composer.Entries()
	draft.LastOutcome = &summary
	draft.UpdatedAt = s.now().UTC()
	draft.Submitting = false
	_ = s.cache.Invalidate(runCtx, dashboardCachePattern)
	// The marks are already upstream; a lost draft write only costs the reset.
	if err := s.save(runCtx, draft); err != nil {
		s.logger.Error("batch draft save after submit failed", zap.String("batch_id", id), zap.Error(err))
	}

	return &models.BatchSubmitResult{
		Message: fmt.Sprintf("Attendance for %s submitted successfully!", outcome.Date),
		Summary: summary,
		Draft:   draft,
	}, nil
}

// Journal lists recent batch submissions with their failures. It is empty when journaling is off.
func (s *BatchService) Journal(ctx context.Context, limit int) ([]models.BatchJournalEntry, error) {
	if s.journal == nil {
		return []models.BatchJournalEntry{}, nil
	}
	entries, err := s.journal.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch journal")
	}
	return entries, nil
}

func (s *BatchService) report(ctx context.Context, id string, outcome models.BatchOutcome) {
	for _, failure := range outcome.Failures {
		s.logger.Warn("batch attendance mark failed",
			zap.String("batch_id", id),
			zap.String("date", outcome.Date),
			zap.String("employee_id", failure.EmployeeID),
			zap.String("status", string(failure.Status)),
			zap.String("reason", failure.Reason),
		)
	}
	s.logger.Info("batch attendance submitted",
		zap.String("batch_id", id),
		zap.String("date", outcome.Date),
		zap.Int("total", outcome.Total),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
	)

	if s.journal == nil {
		return
	}
	entry := &models.BatchJournalEntry{
		BatchID:     id,
		Date:        outcome.Date,
		Total:       outcome.Total,
		Succeeded:   outcome.Succeeded,
		Failed:      outcome.Failed,
		SubmittedAt: s.now().UTC(),
		Failures:    outcome.Failures,
	}
	if err := s.journal.Insert(ctx, entry); err != nil {
		s.logger.Error("batch journal write failed", zap.String("batch_id", id), zap.Error(err))
	}
}

func (s *BatchService) mutate(ctx context.Context, id string, apply func(*attendance.Composer) error) (*models.BatchDraft, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	locked, err := s.drafts.Locked(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch draft")
	}
	if locked {
		return nil, appErrors.ErrBatchInFlight
	}

	composer := attendance.Restore(draft.Date, draft.Entries)
	if err := apply(composer); err != nil {
		return nil, err
	}
	draft.Date = composer.Date()
	draft.Entries = composer.Entries()
	draft.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *BatchService) load(ctx context.Context, id string) (*models.BatchDraft, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch id is required")
	}
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch draft not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch draft")
	}
	return draft, nil
}

func (s *BatchService) save(ctx context.Context, draft *models.BatchDraft) error {
	if err := s.drafts.Save(ctx, draft); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save batch draft")
	}
	return nil
}

func employeesFromEntries(entries []models.BatchEntry) []models.Employee {
	out := make([]models.Employee, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Employee{EmployeeID: e.EmployeeID, FullName: e.FullName})
	}
	return out
}
