package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/models"
	"github.com/noah-isme/hrms-lite/pkg/config"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

const (
	msgCreateEmployeeFailed = "Failed to add employee. Check inputs."
	msgDeleteEmployeeFailed = "Failed to delete employee."
	msgListEmployeesFailed  = "Failed to load employees."
)

type employeeClient interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, req models.EmployeeCreate) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// CreateEmployeeRequest holds the add-employee form.
type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,alphanum"`
	FullName   string `json:"full_name" validate:"required,person_name"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
}

// EmployeeService handles the employee directory use-cases.
type EmployeeService struct {
	client      employeeClient
	cache       *CacheService
	departments []string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(client employeeClient, cache *CacheService, departments []string, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if len(departments) == 0 {
		departments = config.DefaultDepartments
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{client: client, cache: cache, departments: departments, validator: validate, logger: logger}
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.client.ListEmployees(ctx)
	if err != nil {
		return nil, upstreamError(err, msgListEmployeesFailed)
	}
	return employees, nil
}

// Create validates the form locally and registers the employee upstream.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Department = strings.TrimSpace(req.Department)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if !s.knownDepartment(req.Department) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department must be one of: "+strings.Join(s.departments, ", "))
	}

	employee, err := s.client.CreateEmployee(ctx, models.EmployeeCreate{
		EmployeeID: req.EmployeeID,
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		return nil, upstreamError(err, msgCreateEmployeeFailed)
	}
	s.logger.Info("employee created", zap.String("employee_id", req.EmployeeID))
	s.invalidateDashboard(ctx)
	return employee, nil
}

// Delete removes an employee by the user-assigned id.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "employee_id is required")
	}
	if err := s.client.DeleteEmployee(ctx, employeeID); err != nil {
		return upstreamError(err, msgDeleteEmployeeFailed)
	}
	s.logger.Info("employee deleted", zap.String("employee_id", employeeID))
	s.invalidateDashboard(ctx)
	return nil
}

// Departments returns the selectable department names, first one being the form default.
func (s *EmployeeService) Departments() []string {
	out := make([]string, len(s.departments))
	copy(out, s.departments)
	return out
}

func (s *EmployeeService) knownDepartment(name string) bool {
	for _, d := range s.departments {
		if d == name {
			return true
		}
	}
	return false
}

func (s *EmployeeService) invalidateDashboard(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
}
