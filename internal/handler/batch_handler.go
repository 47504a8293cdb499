package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hrms-lite/internal/dto"
	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/response"
)

type batchService interface {
	Create(ctx context.Context, date, tz string) (*models.BatchDraft, error)
	Get(ctx context.Context, id string) (*models.BatchDraft, error)
	SetDate(ctx context.Context, id, date string) (*models.BatchDraft, error)
	Toggle(ctx context.Context, id, employeeID string) (*models.BatchDraft, error)
	Refresh(ctx context.Context, id string) (*models.BatchDraft, error)
	Submit(ctx context.Context, id string) (*models.BatchSubmitResult, error)
	Discard(ctx context.Context, id string) error
	Journal(ctx context.Context, limit int) ([]models.BatchJournalEntry, error)
}

// BatchHandler exposes batch attendance drafts.
type BatchHandler struct {
	service batchService
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(service batchService) *BatchHandler {
	return &BatchHandler{service: service}
}

// Create godoc
// @Summary Start a batch attendance draft
// @Description Loads every employee with status Present. The body is optional.
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchRequest false "Target date, defaults to today"
// @Param tz query string false "IANA time zone for today, overrides the X-Timezone header"
// @Success 201 {object} response.Envelope
// @Router /attendance/batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	if req.Date == "" {
		req.Date = c.Query("date")
	}
	draft, err := h.service.Create(c.Request.Context(), req.Date, requestZone(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.NewBatchDraftResponse(draft))
}

// Get godoc
// @Summary Get a batch draft
// @Tags Batches
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/batches/{batchId} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	draft, err := h.service.Get(c.Request.Context(), c.Param("batchId"))
	h.draft(c, http.StatusOK, draft, err)
}

// Update godoc
// @Summary Change the target date of a batch draft
// @Tags Batches
// @Accept json
// @Produce json
// @Param batchId path string true "Batch ID"
// @Param payload body dto.UpdateBatchRequest true "New date"
// @Success 200 {object} response.Envelope
// @Router /attendance/batches/{batchId} [patch]
func (h *BatchHandler) Update(c *gin.Context) {
	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date is required"))
		return
	}
	draft, err := h.service.SetDate(c.Request.Context(), c.Param("batchId"), req.Date)
	h.draft(c, http.StatusOK, draft, err)
}

// Toggle godoc
// @Summary Flip one employee between Present and Absent
// @Tags Batches
// @Accept json
// @Produce json
// @Param batchId path string true "Batch ID"
// @Param payload body dto.ToggleBatchRequest true "Employee to toggle"
// @Success 200 {object} response.Envelope
// @Router /attendance/batches/{batchId}/toggle [post]
func (h *BatchHandler) Toggle(c *gin.Context) {
	var req dto.ToggleBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "employee_id is required"))
		return
	}
	draft, err := h.service.Toggle(c.Request.Context(), c.Param("batchId"), req.EmployeeID)
	h.draft(c, http.StatusOK, draft, err)
}

// Refresh godoc
// @Summary Reload the employee list into a batch draft
// @Tags Batches
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/batches/{batchId}/refresh [post]
func (h *BatchHandler) Refresh(c *gin.Context) {
	draft, err := h.service.Refresh(c.Request.Context(), c.Param("batchId"))
	h.draft(c, http.StatusOK, draft, err)
}

// Submit godoc
// @Summary Submit every pending status of a batch draft
// @Description Waits for all marks to settle and answers with one aggregate message.
// @Tags Batches
// @Produce json
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/batches/{batchId}/submit [post]
func (h *BatchHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, dto.BatchSubmitResponse{
		Message: result.Message,
		Summary: result.Summary,
		Draft:   dto.NewBatchDraftResponse(result.Draft),
	})
}

// Discard godoc
// @Summary Discard a batch draft
// @Tags Batches
// @Param batchId path string true "Batch ID"
// @Success 204
// @Router /attendance/batches/{batchId} [delete]
func (h *BatchHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("batchId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Journal godoc
// @Summary Recent batch submissions with per-item failures
// @Tags Batches
// @Produce json
// @Param limit query int false "Max entries" default(50)
// @Success 200 {object} response.Envelope
// @Router /attendance/batches/journal [get]
func (h *BatchHandler) Journal(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
		return
	}
	entries, err := h.service.Journal(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

func (h *BatchHandler) draft(c *gin.Context, status int, draft *models.BatchDraft, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, status, dto.NewBatchDraftResponse(draft))
}
