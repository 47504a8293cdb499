package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hrms-lite/internal/dto"
	"github.com/noah-isme/hrms-lite/internal/models"
	"github.com/noah-isme/hrms-lite/internal/service"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/response"
)

const timezoneHeader = "X-Timezone"

type attendanceService interface {
	View(ctx context.Context, query service.AttendanceQuery) (*models.AttendanceView, error)
	ByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecord, error)
	Mark(ctx context.Context, req service.MarkAttendanceRequest, tz string) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, recordID string) error
	Today(tz string) (string, error)
}

type attendanceExporter interface {
	Attendance(ctx context.Context, query service.AttendanceQuery, format service.ExportFormat) (*service.ExportFile, error)
}

// AttendanceHandler exposes the attendance page, the single-entry form and exports.
type AttendanceHandler struct {
	service  attendanceService
	exporter attendanceExporter
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService, exporter attendanceExporter) *AttendanceHandler {
	return &AttendanceHandler{service: service, exporter: exporter}
}

// requestZone is the caller's time zone: the tz query parameter, then the X-Timezone header.
// Empty means the server default.
func requestZone(c *gin.Context) string {
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		return tz
	}
	return strings.TrimSpace(c.GetHeader(timezoneHeader))
}

func queryFromRequest(c *gin.Context) service.AttendanceQuery {
	return service.AttendanceQuery{
		EmployeeID: c.Query("employeeId"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
	}
}

// List godoc
// @Summary Filtered attendance view
// @Description Records sorted newest first. Stats are present only when a filter is active.
// @Tags Attendance
// @Produce json
// @Param employeeId query string false "Employee ID"
// @Param startDate query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive upper bound (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), queryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Export godoc
// @Summary Download the filtered attendance view
// @Tags Attendance
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param employeeId query string false "Employee ID"
// @Param startDate query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive upper bound (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Attendance(c.Request.Context(), queryFromRequest(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// ByEmployee godoc
// @Summary Attendance records of one employee
// @Tags Attendance
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/employee/{employeeId} [get]
func (h *AttendanceHandler) ByEmployee(c *gin.Context) {
	records, err := h.service.ByEmployee(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

// Today godoc
// @Summary Local calendar date used as the form default
// @Tags Attendance
// @Produce json
// @Param tz query string false "IANA time zone, overrides the X-Timezone header and server default"
// @Success 200 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	tz := requestZone(c)
	date, err := h.service.Today(tz)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, dto.TodayResponse{Date: date, TimeZone: tz})
}

// Mark godoc
// @Summary Mark attendance for one employee
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Param tz query string false "IANA time zone used when date is empty"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	record, err := h.service.Mark(c.Request.Context(), req, requestZone(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, record)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Param recordId path string true "Attendance record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{recordId} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	recordID := c.Param("recordId")
	if err := h.service.Delete(c.Request.Context(), recordID); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, dto.DeletedResponse{ID: recordID, Deleted: true})
}
