package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hrms-lite/internal/dto"
	"github.com/noah-isme/hrms-lite/internal/middleware"
	"github.com/noah-isme/hrms-lite/internal/models"
	"github.com/noah-isme/hrms-lite/internal/service"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/response"
)

type employeeService interface {
	List(ctx context.Context) ([]models.Employee, error)
	Create(ctx context.Context, req service.CreateEmployeeRequest) (*models.Employee, error)
	Delete(ctx context.Context, employeeID string) error
	Departments() []string
}

// EmployeeHandler exposes the employee directory.
type EmployeeHandler struct {
	service employeeService
}

// NewEmployeeHandler constructs the handler.
func NewEmployeeHandler(service employeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(employees))
	respond(c, http.StatusOK, employees)
}

// Create godoc
// @Summary Add an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}
	employee, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, employee)
}

// Delete godoc
// @Summary Delete an employee
// @Tags Employees
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{employeeId} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if err := h.service.Delete(c.Request.Context(), employeeID); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, dto.DeletedResponse{ID: employeeID, Deleted: true})
}

// Departments godoc
// @Summary Department options for the employee form
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees/departments [get]
func (h *EmployeeHandler) Departments(c *gin.Context) {
	respond(c, http.StatusOK, h.service.Departments())
}
