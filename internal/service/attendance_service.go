package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/attendance"
	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

const (
	msgMarkAttendanceFailed   = "Failed to mark attendance. It might be a duplicate."
	msgDeleteAttendanceFailed = "Failed to delete"
	msgListAttendanceFailed   = "Failed to load attendance records."
)

type attendanceClient interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
	ListAttendanceByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecord, error)
	MarkAttendance(ctx context.Context, req models.AttendanceCreate) (*models.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, recordID string) error
}

// MarkAttendanceRequest holds the single-entry attendance form.
type MarkAttendanceRequest struct {
	EmployeeID string                  `json:"employee_id" validate:"required"`
	Date       string                  `json:"date" validate:"required,iso_date"`
	Status     models.AttendanceStatus `json:"status" validate:"required,oneof=Present Absent"`
}

// AttendanceQuery carries the view filter as received from the query string.
type AttendanceQuery struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate" validate:"omitempty,iso_date"`
	EndDate    string `json:"endDate" validate:"omitempty,iso_date"`
}

// AttendanceService serves the attendance page and the single-entry form.
type AttendanceService struct {
	client    attendanceClient
	cache     *CacheService
	location  *time.Location
	now       func() time.Time
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. loc decides what "today" means.
func NewAttendanceService(client attendanceClient, cache *CacheService, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{client: client, cache: cache, location: loc, now: time.Now, validator: validate, logger: logger}
}

// View fetches records and employees concurrently, then filters, aggregates and sorts newest first.
func (s *AttendanceService) View(ctx context.Context, query AttendanceQuery) (*models.AttendanceView, error) {
	criteria, err := s.criteria(query)
	if err != nil {
		return nil, err
	}

	var (
		wg                   sync.WaitGroup
		records              []models.AttendanceRecord
		employees            []models.Employee
		recordErr, employErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		records, recordErr = s.client.ListAttendance(ctx)
	}()
	go func() {
		defer wg.Done()
		employees, employErr = s.client.ListEmployees(ctx)
	}()
	wg.Wait()

	if recordErr != nil {
		return nil, upstreamError(recordErr, msgListAttendanceFailed)
	}
	if employErr != nil {
		return nil, upstreamError(employErr, msgListEmployeesFailed)
	}

	filtered := attendance.Filter(records, criteria)
	return &models.AttendanceView{
		Records:   attendance.SortByDateDesc(filtered),
		Stats:     attendance.Aggregate(filtered, criteria),
		Employees: employees,
		Criteria:  criteria,
	}, nil
}

// ByEmployee returns the records of one employee, newest first.
func (s *AttendanceService) ByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	records, err := s.client.ListAttendanceByEmployee(ctx, employeeID)
	if err != nil {
		return nil, upstreamError(err, msgListAttendanceFailed)
	}
	return attendance.SortByDateDesc(records), nil
}

// Mark records a single attendance entry. An empty date means today in tz, or in the configured zone.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest, tz string) (*models.AttendanceRecord, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		today, err := dateProvider(s.now, tz, s.location)
		if err != nil {
			return nil, err
		}
		req.Date = today()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	record, err := s.client.MarkAttendance(ctx, models.AttendanceCreate{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Status:     req.Status,
	})
	if err != nil {
		return nil, upstreamError(err, msgMarkAttendanceFailed)
	}
	s.logger.Info("attendance marked", zap.String("employee_id", req.EmployeeID), zap.String("date", req.Date), zap.String("status", string(req.Status)))
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
	return record, nil
}

// Delete removes one attendance record by its system id.
func (s *AttendanceService) Delete(ctx context.Context, recordID string) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "record id is required")
	}
	if err := s.client.DeleteAttendance(ctx, recordID); err != nil {
		return upstreamError(err, msgDeleteAttendanceFailed)
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// Today returns the local calendar date. tz overrides the configured zone when it names a valid IANA location.
func (s *AttendanceService) Today(tz string) (string, error) {
	today, err := dateProvider(s.now, tz, s.location)
	if err != nil {
		return "", err
	}
	return today(), nil
}

func (s *AttendanceService) criteria(query AttendanceQuery) (models.FilterCriteria, error) {
	query.EmployeeID = strings.TrimSpace(query.EmployeeID)
	query.StartDate = strings.TrimSpace(query.StartDate)
	query.EndDate = strings.TrimSpace(query.EndDate)
	if err := s.validator.Struct(query); err != nil {
		return models.FilterCriteria{}, validationError(err)
	}
	return models.FilterCriteria{
		EmployeeID: query.EmployeeID,
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
	}, nil
}
