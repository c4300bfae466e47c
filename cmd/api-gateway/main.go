package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/exam-planner-api/api/swagger"
	"github.com/noah-isme/exam-planner-api/internal/handler"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/cache"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/database"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/requestid"
)

// @title Exam Planner API
// @version 1.0.0
// @description Department exam scheduling and seat placement
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The planner works without a cache, just slower on listings.
		logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	examRepo := repository.NewExamRepository(db)

	metricsSvc := service.NewMetricsService()
	scheduleSvc := service.NewScheduleService(examRepo, redisClient, metricsSvc, logr, cfg.Scheduler.ListCacheTTL)
	schedulerSvc := service.NewExamSchedulerService(roomRepo, courseRepo, enrollmentRepo, examRepo, db, scheduleSvc, metricsSvc, nil, logr, cfg.Scheduler)
	seatingSvc := service.NewSeatingService(examRepo, enrollmentRepo, metricsSvc, logr)

	var archive *service.ExportArchive
	if cfg.Exports.Enabled && cfg.Exports.ArchiveDir != "" {
		archive, err = service.NewExportArchive(cfg.Exports.ArchiveDir, cfg.Exports.ArchiveTTL, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export archive", "error", err)
		}
		archive.Start(context.Background())
		defer archive.Stop()
	}
	exportSvc := service.NewExportService(scheduleSvc, seatingSvc, examRepo, courseRepo, archive, logr)

	scheduleHandler := handler.NewScheduleHandler(schedulerSvc, scheduleSvc, exportSvc)
	seatingHandler := handler.NewSeatingHandler(scheduleSvc, seatingSvc, exportSvc)
	roomHandler := handler.NewRoomHandler(roomRepo)
	courseHandler := handler.NewCourseHandler(courseRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/schedule/runs", scheduleHandler.Run)
		api.GET("/schedule", scheduleHandler.List)
		api.GET("/exams", seatingHandler.ListExams)
		api.GET("/exams/:id/seating", seatingHandler.Seating)
		api.GET("/rooms", roomHandler.List)
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/demand", courseHandler.Demand)

		if cfg.Exports.Enabled {
			api.GET("/schedule/export", scheduleHandler.Export)
			api.GET("/exams/:id/seating/export", seatingHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
