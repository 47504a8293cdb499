package models

import "time"

// BatchEntry is one employee's pending status inside a batch draft.
type BatchEntry struct {
	EmployeeID string           `json:"employee_id"`
	FullName   string           `json:"full_name"`
	Status     AttendanceStatus `json:"status"`
}

// BatchDraft is the stored state of a batch attendance composer for one target date.
type BatchDraft struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	Entries     []BatchEntry  `json:"entries"`
	LastOutcome *BatchSummary `json:"last_outcome,omitempty"`
	Submitting  bool          `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BatchItemFailure records a single mark call that did not succeed.
type BatchItemFailure struct {
	EmployeeID string           `json:"employee_id"`
	Status     AttendanceStatus `json:"status"`
	Reason     string           `json:"reason"`
}

// BatchOutcome is the settled result of a batch submission, including per-item failures.
type BatchOutcome struct {
	Date      string             `json:"date"`
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Failures  []BatchItemFailure `json:"-"`
}

// Summary drops per-item detail.
func (o BatchOutcome) Summary() BatchSummary {
	return BatchSummary{Date: o.Date, Total: o.Total, Succeeded: o.Succeeded, Failed: o.Failed}
}

// BatchSummary is the aggregate view of an outcome that is safe to show to users.
type BatchSummary struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// BatchJournalEntry is a persisted record of a batch submission.
type BatchJournalEntry struct {
	ID          string             `db:"id" json:"id"`
	BatchID     string             `db:"batch_id" json:"batch_id"`
	Date        string             `db:"target_date" json:"date"`
	Total       int                `db:"total" json:"total"`
	Succeeded   int                `db:"succeeded" json:"succeeded"`
	Failed      int                `db:"failed" json:"failed"`
	SubmittedAt time.Time          `db:"submitted_at" json:"submitted_at"`
	Failures    []BatchItemFailure `db:"-" json:"failures,omitempty"`
}

// BatchSubmitResult is what a caller sees after submitting: one message and aggregate counts.
type BatchSubmitResult struct {
	Message string       `json:"message"`
	Summary BatchSummary `json:"summary"`
	Draft   *BatchDraft  `json:"draft"`
}
