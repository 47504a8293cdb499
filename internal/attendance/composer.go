package attendance

import (
	"context"
	"sync"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

// Marker records a single attendance entry upstream.
type Marker interface {
	MarkAttendance(ctx context.Context, req models.AttendanceCreate) (*models.AttendanceRecord, error)
}

// Composer holds the per-employee status map for marking one date in a single batch.
type Composer struct {
	mu         sync.Mutex
	date       string
	order      []string
	entries    map[string]models.BatchEntry
	submitting bool
}

// NewComposer returns an empty composer targeting date.
func NewComposer(date string) *Composer {
	return &Composer{date: date, entries: map[string]models.BatchEntry{}}
}

// Restore rebuilds a composer from previously captured entries.
func Restore(date string, entries []models.BatchEntry) *Composer {
	c := NewComposer(date)
	for _, entry := range entries {
		if _, dup := c.entries[entry.EmployeeID]; dup {
			continue
		}
		if !entry.Status.Valid() {
			entry.Status = models.AttendanceStatusPresent
		}
		c.order = append(c.order, entry.EmployeeID)
		c.entries[entry.EmployeeID] = entry
	}
	return c
}

// Date returns the target date.
func (c *Composer) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// SetDate retargets the batch without touching statuses.
func (c *Composer) SetDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = date
}

// Load applies an employee list. An empty composer defaults everyone to Present;
// otherwise known employees keep their status, new ones start Present and departed ones are dropped.
func (c *Composer) Load(employees []models.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(employees, len(c.order) == 0)
}

// Reset rebuilds the map with every employee Present.
func (c *Composer) Reset(employees []models.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(employees, true)
}

func (c *Composer) load(employees []models.Employee, fresh bool) {
	order := make([]string, 0, len(employees))
	entries := make(map[string]models.BatchEntry, len(employees))
	for _, emp := range employees {
		if _, dup := entries[emp.EmployeeID]; dup {
			continue
		}
		status := models.AttendanceStatusPresent
		if prev, ok := c.entries[emp.EmployeeID]; ok && !fresh {
			status = prev.Status
		}
		order = append(order, emp.EmployeeID)
		entries[emp.EmployeeID] = models.BatchEntry{
			EmployeeID: emp.EmployeeID,
			FullName:   emp.FullName,
			Status:     status,
		}
	}
	c.order = order
	c.entries = entries
}

// Toggle flips the employee between Present and Absent. It reports false for unknown employees.
func (c *Composer) Toggle(employeeID string) (models.AttendanceStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[employeeID]
	if !ok {
		return "", false
	}
	entry.Status = entry.Status.Toggle()
	c.entries[employeeID] = entry
	return entry.Status, true
}

// Entries returns the entries in employee list order.
func (c *Composer) Entries() []models.BatchEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entriesLocked()
}

func (c *Composer) entriesLocked() []models.BatchEntry {
	out := make([]models.BatchEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// CanSubmit reports whether a submission would be accepted right now.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.submitting && len(c.order) > 0
}

// Submit marks every employee concurrently and waits for all calls to settle.
// Individual failures never stop the others and are returned in the outcome; nothing is retried or rolled back.
func (c *Composer) Submit(ctx context.Context, marker Marker) (models.BatchOutcome, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return models.BatchOutcome{}, appErrors.ErrBatchInFlight
	}
	if len(c.order) == 0 {
		c.mu.Unlock()
		return models.BatchOutcome{}, appErrors.ErrNoEmployees
	}
	c.submitting = true
	date := c.date
	entries := c.entriesLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	errs := make([]error, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry models.BatchEntry) {
			defer wg.Done()
			_, errs[i] = marker.MarkAttendance(ctx, models.AttendanceCreate{
				EmployeeID: entry.EmployeeID,
				Date:       date,
				Status:     entry.Status,
			})
		}(i, entry)
	}
	wg.Wait()

	outcome := models.BatchOutcome{Date: date, Total: len(entries)}
	for i, err := range errs {
		if err == nil {
			outcome.Succeeded++
			continue
		}
		outcome.Failed++
		outcome.Failures = append(outcome.Failures, models.BatchItemFailure{
			EmployeeID: entries[i].EmployeeID,
			Status:     entries[i].Status,
			Reason:     err.Error(),
		})
	}
	return outcome, nil
}
