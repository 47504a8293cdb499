package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hrms-lite/internal/models"
	"github.com/noah-isme/hrms-lite/internal/repository"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/hrapi"
)

type fakeJournal struct {
	mu      sync.Mutex
	entries []models.BatchJournalEntry
	err     error
}

func (f *fakeJournal) Insert(_ context.Context, entry *models.BatchJournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeJournal) ListRecent(_ context.Context, limit int) ([]models.BatchJournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return append([]models.BatchJournalEntry(nil), f.entries[:limit]...), nil
}

// hookedDrafts lets a test fail saves or run code just before the submission lock is taken.
type hookedDrafts struct {
	*repository.MemoryDraftRepository
	saveErr       error
	beforeAcquire func()
}

func (h *hookedDrafts) Save(ctx context.Context, draft *models.BatchDraft) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	return h.MemoryDraftRepository.Save(ctx, draft)
}

func (h *hookedDrafts) Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if h.beforeAcquire != nil {
		hook := h.beforeAcquire
		h.beforeAcquire = nil
		hook()
	}
	return h.MemoryDraftRepository.Acquire(ctx, id, ttl)
}

type batchFixture struct {
	svc     *BatchService
	client  *fakeHRClient
	drafts  *repository.MemoryDraftRepository
	journal *fakeJournal
	cache   *memoryCacheRepo
	metrics *MetricsService
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	return newBatchFixtureWith(t, nil)
}

// newBatchFixtureWith builds the fixture over a hooked draft store when hooks is not nil.
func newBatchFixtureWith(t *testing.T, hooks *hookedDrafts) *batchFixture {
	t.Helper()
	f := &batchFixture{
		client:  &fakeHRClient{employees: threeEmployees()},
		drafts:  repository.NewMemoryDraftRepository(time.Hour),
		journal: &fakeJournal{},
		cache:   newMemoryCacheRepo(),
		metrics: NewMetricsService(),
	}
	var drafts DraftStore = f.drafts
	if hooks != nil {
		hooks.MemoryDraftRepository = f.drafts
		drafts = hooks
	}
	f.svc = NewBatchService(BatchServiceParams{
		Client:  f.client,
		Drafts:  drafts,
		Journal: f.journal,
		Cache:   NewCacheService(f.cache, f.metrics, 0, nil, true),
		Metrics: f.metrics,
		Config:  BatchServiceConfig{SubmitTimeout: 5 * time.Second, Location: time.UTC},
	})
	f.svc.now = func() time.Time { return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) }
	ids := 0
	f.svc.newID = func() string {
		ids++
		return fmt.Sprintf("batch-%d", ids)
	}
	return f
}

func statusesOf(draft *models.BatchDraft) map[string]models.AttendanceStatus {
	out := map[string]models.AttendanceStatus{}
	for _, e := range draft.Entries {
		out[e.EmployeeID] = e.Status
	}
	return out
}

func TestBatchServiceCreateDefaultsToTodayAllPresent(t *testing.T) {
	f := newBatchFixture(t)

	draft, err := f.svc.Create(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "batch-1", draft.ID)
	assert.Equal(t, "2024-01-05", draft.Date)
	require.Len(t, draft.Entries, 3)
	for _, status := range statusesOf(draft) {
		assert.Equal(t, models.AttendanceStatusPresent, status)
	}

	stored, err := f.svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.Entries, stored.Entries)
	assert.False(t, stored.Submitting)
}

func TestBatchServiceCreateUsesCallerZone(t *testing.T) {
	f := newBatchFixture(t)
	f.svc.now = func() time.Time { return time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC) }

	draft, err := f.svc.Create(context.Background(), "", "Pacific/Kiritimati")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", draft.Date)

	_, err = f.svc.Create(context.Background(), "", "Mars/Olympus")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBatchServiceCreateRejectsBadDate(t *testing.T) {
	f := newBatchFixture(t)

	_, err := f.svc.Create(context.Background(), "2024/01/05", "")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, f.client.listEmpCalls)
}

func TestBatchServiceToggleScenario(t *testing.T) {
	f := newBatchFixture(t)
	f.client.employees = threeEmployees()[:2]
	draft, err := f.svc.Create(context.Background(), "2024-01-05", "")
	require.NoError(t, err)

	draft, err = f.svc.Toggle(context.Background(), draft.ID, "E1")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.AttendanceStatus{"E1": models.AttendanceStatusAbsent, "E2": models.AttendanceStatusPresent}, statusesOf(draft))

	draft, err = f.svc.Toggle(context.Background(), draft.ID, "E1")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, statusesOf(draft)["E1"])

	_, err = f.svc.Toggle(context.Background(), draft.ID, "E9")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBatchServiceSetDateKeepsStatuses(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")
	_, _ = f.svc.Toggle(context.Background(), draft.ID, "E2")

	draft, err := f.svc.SetDate(context.Background(), draft.ID, "2024-01-08")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", draft.Date)
	assert.Equal(t, models.AttendanceStatusAbsent, statusesOf(draft)["E2"])

	_, err = f.svc.SetDate(context.Background(), draft.ID, "tomorrow")
	assert.Error(t, err)
}

func TestBatchServiceRefreshMergesEmployees(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")
	_, _ = f.svc.Toggle(context.Background(), draft.ID, "E1")

	f.client.employees = []models.Employee{
		{EmployeeID: "E1", FullName: "Ada Lovelace"},
		{EmployeeID: "E4", FullName: "Katherine Johnson"},
	}
	draft, err := f.svc.Refresh(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.AttendanceStatus{"E1": models.AttendanceStatusAbsent, "E4": models.AttendanceStatusPresent}, statusesOf(draft))
}

func TestBatchServiceSubmitPartialFailure(t *testing.T) {
	f := newBatchFixture(t)
	draft, err := f.svc.Create(context.Background(), "2024-01-05", "")
	require.NoError(t, err)
	_, err = f.svc.Toggle(context.Background(), draft.ID, "E2")
	require.NoError(t, err)
	f.client.markErr = map[string]error{"E2": &hrapi.Error{Op: "mark_attendance", Status: http.StatusBadRequest, Detail: "Attendance already marked for this date"}}
	reloadsBefore := f.client.listEmpCalls

	result, err := f.svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)

	assert.Equal(t, "Attendance for 2024-01-05 submitted successfully!", result.Message)
	assert.Equal(t, models.BatchSummary{Date: "2024-01-05", Total: 3, Succeeded: 2, Failed: 1}, result.Summary)
	assert.Len(t, f.client.marked, 2, "the other marks complete despite one failure")
	assert.Equal(t, reloadsBefore+1, f.client.listEmpCalls, "employee list is reloaded after submission")
	for _, status := range statusesOf(result.Draft) {
		assert.Equal(t, models.AttendanceStatusPresent, status)
	}

	require.Len(t, f.journal.entries, 1)
	entry := f.journal.entries[0]
	assert.Equal(t, draft.ID, entry.BatchID)
	require.Len(t, entry.Failures, 1)
	assert.Equal(t, "E2", entry.Failures[0].EmployeeID)
	assert.Equal(t, models.AttendanceStatusAbsent, entry.Failures[0].Status)

	locked, _ := f.drafts.Locked(context.Background(), draft.ID)
	assert.False(t, locked, "lock is released once the batch settles")

	stored, err := f.svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastOutcome)
	assert.Equal(t, 1, stored.LastOutcome.Failed)
	assert.Contains(t, f.cache.invalidated, dashboardCachePattern)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().BatchItemsFailed)
}

func TestBatchServiceSubmitSurvivesDraftSaveFailure(t *testing.T) {
	hooks := &hookedDrafts{}
	f := newBatchFixtureWith(t, hooks)
	draft, err := f.svc.Create(context.Background(), "2024-01-05", "")
	require.NoError(t, err)
	hooks.saveErr = errors.New("redis: connection reset")

	result, err := f.svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Attendance for 2024-01-05 submitted successfully!", result.Message)
	assert.Equal(t, 3, result.Summary.Succeeded)
	assert.Len(t, f.client.marked, 3)
	assert.Contains(t, f.cache.invalidated, dashboardCachePattern)

	locked, _ := f.drafts.Locked(context.Background(), draft.ID)
	assert.False(t, locked)
}

func TestBatchServiceSubmitIncludesToggleSavedBeforeLock(t *testing.T) {
	hooks := &hookedDrafts{}
	f := newBatchFixtureWith(t, hooks)
	draft, err := f.svc.Create(context.Background(), "2024-01-05", "")
	require.NoError(t, err)
	hooks.beforeAcquire = func() {
		_, toggleErr := f.svc.Toggle(context.Background(), draft.ID, "E2")
		require.NoError(t, toggleErr)
	}

	_, err = f.svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)

	sent := map[string]models.AttendanceStatus{}
	for _, req := range f.client.marked {
		sent[req.EmployeeID] = req.Status
	}
	assert.Equal(t, models.AttendanceStatusAbsent, sent["E2"])
	assert.Equal(t, models.AttendanceStatusPresent, sent["E1"])
}

func TestBatchServiceSubmitIgnoresCallerCancellation(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := f.svc.Submit(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summary.Succeeded)
	for _, ctxErr := range f.client.markCtxErrs {
		assert.NoError(t, ctxErr)
	}
}

func TestBatchServiceSubmitRejectsConcurrentSubmission(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")

	ok, err := f.drafts.Acquire(context.Background(), draft.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Submit(context.Background(), draft.ID)
	assert.ErrorIs(t, err, appErrors.ErrBatchInFlight)
	assert.Empty(t, f.client.marked)

	_, err = f.svc.Toggle(context.Background(), draft.ID, "E1")
	assert.ErrorIs(t, err, appErrors.ErrBatchInFlight)

	current, err := f.svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.True(t, current.Submitting)
}

func TestBatchServiceSubmitEmptyDraft(t *testing.T) {
	f := newBatchFixture(t)
	f.client.employees = nil
	draft, err := f.svc.Create(context.Background(), "2024-01-05", "")
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), draft.ID)
	assert.ErrorIs(t, err, appErrors.ErrNoEmployees)
	assert.Empty(t, f.client.marked)
}

func TestBatchServiceSubmitReloadFailureStillResets(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")
	_, _ = f.svc.Toggle(context.Background(), draft.ID, "E3")
	f.client.listEmpErr = &hrapi.Error{Op: "list_employees", Err: errors.New("down")}
	f.journal.err = errors.New("db down")

	result, err := f.svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Len(t, result.Draft.Entries, 3)
	assert.Equal(t, models.AttendanceStatusPresent, statusesOf(result.Draft)["E3"])
}

func TestBatchServiceDiscardAndNotFound(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")

	require.NoError(t, f.svc.Discard(context.Background(), draft.ID))
	_, err := f.svc.Get(context.Background(), draft.ID)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	assert.ErrorIs(t, f.svc.Discard(context.Background(), draft.ID), appErrors.ErrNotFound)
	_, err = f.svc.Submit(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBatchServiceJournal(t *testing.T) {
	f := newBatchFixture(t)
	draft, _ := f.svc.Create(context.Background(), "2024-01-05", "")
	_, err := f.svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)

	entries, err := f.svc.Journal(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Succeeded)

	noJournal := NewBatchService(BatchServiceParams{Client: f.client, Drafts: f.drafts})
	entries, err = noJournal.Journal(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
