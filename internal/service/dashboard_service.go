package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/models"
)

const (
	dashboardCacheKey     = "hr:dashboard:counts"
	dashboardCachePattern = "hr:dashboard:*"
)

type dashboardClient interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
}

// DashboardService produces the landing page counts.
type DashboardService struct {
	client   dashboardClient
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(client dashboardClient, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{client: client, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Counts returns employee and attendance totals and whether they came from cache.
func (s *DashboardService) Counts(ctx context.Context) (*models.DashboardCounts, bool, error) {
	var cached models.DashboardCounts
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	var (
		wg                   sync.WaitGroup
		employees            []models.Employee
		records              []models.AttendanceRecord
		employErr, recordErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		employees, employErr = s.client.ListEmployees(ctx)
	}()
	go func() {
		defer wg.Done()
		records, recordErr = s.client.ListAttendance(ctx)
	}()
	wg.Wait()

	if employErr != nil {
		return nil, false, upstreamError(employErr, msgListEmployeesFailed)
	}
	if recordErr != nil {
		return nil, false, upstreamError(recordErr, msgListAttendanceFailed)
	}

	counts := &models.DashboardCounts{EmployeeCount: len(employees), AttendanceCount: len(records)}
	if err := s.cache.Set(ctx, dashboardCacheKey, counts, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard cache write skipped", zap.Error(err))
	}
	return counts, false, nil
}
