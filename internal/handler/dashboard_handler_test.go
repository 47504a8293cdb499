package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/hrms-lite/internal/models"
)

type fakeDashboardSrv struct {
	counts *models.DashboardCounts
	hit    bool
	err    error
}

func (f *fakeDashboardSrv) Counts(context.Context) (*models.DashboardCounts, bool, error) {
	return f.counts, f.hit, f.err
}

func TestDashboardHandlerCounts(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{counts: &models.DashboardCounts{EmployeeCount: 3, AttendanceCount: 7}, hit: true})
	c, rec := newTestContext(http.MethodGet, "/dashboard", nil)

	handler.Counts(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.JSONEq(t, `{"employee_count":3,"attendance_count":7}`, string(env.Data))
}

func TestDashboardHandlerError(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{err: errors.New("boom")})
	c, rec := newTestContext(http.MethodGet, "/dashboard", nil)

	handler.Counts(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerNilService(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/dashboard", nil)

	NewDashboardHandler(nil).Counts(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
