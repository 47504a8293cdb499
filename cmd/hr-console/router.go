package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/hrms-lite/api/swagger"
	"github.com/noah-isme/hrms-lite/internal/handler"
	internalmiddleware "github.com/noah-isme/hrms-lite/internal/middleware"
	"github.com/noah-isme/hrms-lite/internal/service"
	"github.com/noah-isme/hrms-lite/pkg/config"
	"github.com/noah-isme/hrms-lite/pkg/logger"
	corsmiddleware "github.com/noah-isme/hrms-lite/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hrms-lite/pkg/middleware/requestid"
)

type routerDeps struct {
	metrics    *service.MetricsService
	checks     map[string]handler.Pinger
	employees  *service.EmployeeService
	attendance *service.AttendanceService
	exports    *service.ExportService
	batches    *service.BatchService
	dashboard  *service.DashboardService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(deps.metrics, deps.checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	employeeHandler := handler.NewEmployeeHandler(deps.employees)
	attendanceHandler := handler.NewAttendanceHandler(deps.attendance, deps.exports)
	batchHandler := handler.NewBatchHandler(deps.batches)
	dashboardHandler := handler.NewDashboardHandler(deps.dashboard)

	api := r.Group(cfg.APIPrefix)

	employees := api.Group("/employees")
	employees.GET("/departments", employeeHandler.Departments)
	employees.GET("", employeeHandler.List)
	employees.POST("", employeeHandler.Create)
	employees.DELETE("/:employeeId", employeeHandler.Delete)

	attendance := api.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.POST("", attendanceHandler.Mark)
	attendance.GET("/export", attendanceHandler.Export)
	attendance.GET("/today", attendanceHandler.Today)
	attendance.GET("/employee/:employeeId", attendanceHandler.ByEmployee)

	batches := attendance.Group("/batches")
	batches.POST("", batchHandler.Create)
	batches.GET("/journal", batchHandler.Journal)
	batches.GET("/:batchId", batchHandler.Get)
	batches.PATCH("/:batchId", batchHandler.Update)
	batches.DELETE("/:batchId", batchHandler.Discard)
	batches.POST("/:batchId/toggle", batchHandler.Toggle)
	batches.POST("/:batchId/refresh", batchHandler.Refresh)
	batches.POST("/:batchId/submit", batchHandler.Submit)

	attendance.DELETE("/:recordId", attendanceHandler.Delete)

	api.GET("/dashboard", dashboardHandler.Counts)

	return r
}
