package dto

import (
	"time"

	"github.com/noah-isme/hrms-lite/internal/models"
)

// CreateBatchRequest starts a batch draft. An empty date means today.
type CreateBatchRequest struct {
	Date string `json:"date"`
}

// UpdateBatchRequest retargets a batch draft.
type UpdateBatchRequest struct {
	Date string `json:"date" binding:"required"`
}

// ToggleBatchRequest flips one employee in a batch draft.
type ToggleBatchRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

// BatchDraftResponse is the batch composer as the console renders it.
type BatchDraftResponse struct {
	ID           string               `json:"id"`
	Date         string               `json:"date"`
	Entries      []models.BatchEntry  `json:"entries"`
	Total        int                  `json:"total"`
	PresentCount int                  `json:"present_count"`
	AbsentCount  int                  `json:"absent_count"`
	Submitting   bool                 `json:"submitting"`
	CanSubmit    bool                 `json:"can_submit"`
	LastOutcome  *models.BatchSummary `json:"last_outcome,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewBatchDraftResponse derives counts and the submit affordance from a draft.
func NewBatchDraftResponse(draft *models.BatchDraft) BatchDraftResponse {
	resp := BatchDraftResponse{
		ID:          draft.ID,
		Date:        draft.Date,
		Entries:     draft.Entries,
		Total:       len(draft.Entries),
		Submitting:  draft.Submitting,
		CanSubmit:   !draft.Submitting && len(draft.Entries) > 0,
		LastOutcome: draft.LastOutcome,
		UpdatedAt:   draft.UpdatedAt,
	}
	if resp.Entries == nil {
		resp.Entries = []models.BatchEntry{}
	}
	for _, e := range draft.Entries {
		if e.Status == models.AttendanceStatusAbsent {
			resp.AbsentCount++
		} else {
			resp.PresentCount++
		}
	}
	return resp
}

// BatchSubmitResponse is returned after a batch settles.
type BatchSubmitResponse struct {
	Message string              `json:"message"`
	Summary models.BatchSummary `json:"summary"`
	Draft   BatchDraftResponse  `json:"draft"`
}
