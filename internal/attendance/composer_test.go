package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

type fakeMarker struct {
	mu      sync.Mutex
	calls   []models.AttendanceCreate
	failFor map[string]error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeMarker) MarkAttendance(_ context.Context, req models.AttendanceCreate) (*models.AttendanceRecord, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if err := f.failFor[req.EmployeeID]; err != nil {
		return nil, err
	}
	return &models.AttendanceRecord{ID: "rec-" + req.EmployeeID, EmployeeID: req.EmployeeID, Date: req.Date, Status: req.Status}, nil
}

func employees(ids ...string) []models.Employee {
	out := make([]models.Employee, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Employee{EmployeeID: id, FullName: "Name " + id})
	}
	return out
}

func TestComposerDefaultsToPresentAndToggles(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1", "E2"))

	assert.Equal(t, map[string]models.AttendanceStatus{
		"E1": models.AttendanceStatusPresent,
		"E2": models.AttendanceStatusPresent,
	}, statuses(c))

	status, ok := c.Toggle("E2")
	require.True(t, ok)
	assert.Equal(t, models.AttendanceStatusAbsent, status)
	assert.Equal(t, map[string]models.AttendanceStatus{
		"E1": models.AttendanceStatusPresent,
		"E2": models.AttendanceStatusAbsent,
	}, statuses(c))
}

func TestComposerToggleTwiceRestores(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1"))
	before := statuses(c)["E1"]

	c.Toggle("E1")
	c.Toggle("E1")

	after := statuses(c)["E1"]
	assert.Equal(t, before, after)
}

func TestComposerToggleUnknownIsNoop(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1"))

	_, ok := c.Toggle("E404")
	assert.False(t, ok)
	assert.Len(t, statuses(c), 1)
}

func TestComposerLoadKeepsExistingStatuses(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1", "E2"))
	c.Toggle("E1")

	c.Load(employees("E1", "E3"))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "E1", entries[0].EmployeeID)
	assert.Equal(t, models.AttendanceStatusAbsent, entries[0].Status)
	assert.Equal(t, "E3", entries[1].EmployeeID)
	assert.Equal(t, models.AttendanceStatusPresent, entries[1].Status)
}

func TestComposerResetDefaultsEveryone(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1", "E2"))
	c.Toggle("E1")

	c.Reset(employees("E1", "E2"))

	for _, s := range statuses(c) {
		assert.Equal(t, models.AttendanceStatusPresent, s)
	}
}

func TestRestoreKeepsOrderAndStatuses(t *testing.T) {
	c := Restore("2024-01-05", []models.BatchEntry{
		{EmployeeID: "E2", Status: models.AttendanceStatusAbsent},
		{EmployeeID: "E1", Status: "bogus"},
		{EmployeeID: "E2", Status: models.AttendanceStatusPresent},
	})

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "E2", entries[0].EmployeeID)
	assert.Equal(t, models.AttendanceStatusAbsent, entries[0].Status)
	assert.Equal(t, models.AttendanceStatusPresent, entries[1].Status)
}

func TestComposerSubmitPartialFailure(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1", "E2", "E3"))
	c.Toggle("E3")
	marker := &fakeMarker{failFor: map[string]error{"E2": errors.New("Attendance already marked for this date")}}

	outcome, err := c.Submit(context.Background(), marker)
	require.NoError(t, err)

	assert.Len(t, marker.calls, 3)
	assert.Equal(t, 3, outcome.Total)
	assert.Equal(t, 2, outcome.Succeeded)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "E2", outcome.Failures[0].EmployeeID)

	byEmployee := map[string]models.AttendanceCreate{}
	for _, call := range marker.calls {
		byEmployee[call.EmployeeID] = call
	}
	assert.Equal(t, models.AttendanceStatusAbsent, byEmployee["E3"].Status)
	assert.Equal(t, "2024-01-05", byEmployee["E1"].Date)
	assert.True(t, c.CanSubmit())
}

func TestComposerSubmitEmpty(t *testing.T) {
	c := NewComposer("2024-01-05")
	assert.False(t, c.CanSubmit())

	_, err := c.Submit(context.Background(), &fakeMarker{})
	assert.ErrorIs(t, err, appErrors.ErrNoEmployees)
}

func TestComposerRejectsConcurrentSubmit(t *testing.T) {
	c := NewComposer("2024-01-05")
	c.Load(employees("E1"))
	marker := &fakeMarker{block: make(chan struct{}), started: make(chan struct{}, 1)}

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), marker)
		done <- err
	}()
	<-marker.started

	assert.False(t, c.CanSubmit())
	_, err := c.Submit(context.Background(), marker)
	assert.ErrorIs(t, err, appErrors.ErrBatchInFlight)

	close(marker.block)
	require.NoError(t, <-done)
	assert.True(t, c.CanSubmit())
}

func statuses(c *Composer) map[string]models.AttendanceStatus {
	out := map[string]models.AttendanceStatus{}
	for _, entry := range c.Entries() {
		out[entry.EmployeeID] = entry.Status
	}
	return out
}
