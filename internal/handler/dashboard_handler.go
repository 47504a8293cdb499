package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hrms-lite/internal/middleware"
	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/response"
)

type dashboardService interface {
	Counts(ctx context.Context) (*models.DashboardCounts, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Counts godoc
// @Summary Employee and attendance totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Counts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	counts, cacheHit, err := h.service.Counts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	respond(c, http.StatusOK, counts)
}
