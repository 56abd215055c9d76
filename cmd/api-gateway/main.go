package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ops/ta-proctoring-api/api/swagger"
	"github.com/campus-ops/ta-proctoring-api/internal/handler"
	"github.com/campus-ops/ta-proctoring-api/internal/middleware"
	"github.com/campus-ops/ta-proctoring-api/internal/repository"
	"github.com/campus-ops/ta-proctoring-api/internal/service"
	"github.com/campus-ops/ta-proctoring-api/pkg/cache"
	"github.com/campus-ops/ta-proctoring-api/pkg/config"
	"github.com/campus-ops/ta-proctoring-api/pkg/database"
	"github.com/campus-ops/ta-proctoring-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/ta-proctoring-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/ta-proctoring-api/pkg/middleware/requestid"
)

// @title TA Proctoring API
// @version 0.1.0
// @description Constraint-based proctor assignment for exams
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

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Proctoring.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Proctoring.CandidateTTL, logr, true)
		}
	}

	validate := validator.New()

	taRepo := repository.NewTARepository(db)
	staffRepo := repository.NewStaffRepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	slotRepo := repository.NewWeeklySlotRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	departmentSvc := service.NewDepartmentService(staffRepo, logr)
	eligibilitySvc := service.NewEligibilityService(leaveRepo, assignmentRepo, slotRepo, allocationRepo, swapRepo, settingsRepo, departmentSvc, logr)
	poolSvc := service.NewPoolService(taRepo, logr)
	proctoringSvc := service.NewProctoringService(examRepo, poolSvc, eligibilitySvc, cacheSvc, metrics, cfg.Proctoring, logr)
	assignmentSvc := service.NewAssignmentService(db, examRepo, assignmentRepo, taRepo, cacheSvc, metrics, logr)
	examSvc := service.NewExamService(db, examRepo, assignmentRepo, taRepo, cacheSvc, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, cfg.Proctoring.NotifyConcurrency, cfg.Proctoring.NotifyQueueSize, logr)
	swapSvc := service.NewSwapService(db, swapRepo, assignmentRepo, examRepo, taRepo, poolSvc, eligibilitySvc, notificationSvc, cacheSvc, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cacheSvc, validate, logr)
	taSvc := service.NewTAService(taRepo, slotRepo, leaveRepo, allocationRepo, departmentSvc, cacheSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	examHandler := handler.NewExamHandler(examSvc)
	proctoringHandler := handler.NewProctoringHandler(proctoringSvc, assignmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	swapHandler := handler.NewSwapHandler(swapSvc)
	taHandler := handler.NewTAHandler(taSvc)
	staffHandler := handler.NewStaffHandler(departmentSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
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
		api.GET("/exams", examHandler.List)
		api.POST("/exams", examHandler.Create)
		api.GET("/exams/:id", examHandler.Get)
		api.DELETE("/exams/:id", examHandler.Delete)
		api.GET("/exams/:id/candidates", proctoringHandler.Candidates)
		api.POST("/exams/:id/proposal", proctoringHandler.Propose)
		api.POST("/exams/:id/assignments", proctoringHandler.Confirm)

		api.GET("/assignments", assignmentHandler.List)
		api.GET("/assignments/mine", assignmentHandler.ListMine)
		api.GET("/assignments/export", assignmentHandler.Export)
		api.GET("/assignments/:id/swap-candidates", swapHandler.Candidates)
		api.POST("/assignments/:id/reassign", swapHandler.Reassign)

		api.GET("/swaps", swapHandler.ListMine)
		api.POST("/swaps", swapHandler.Create)
		api.POST("/swaps/:id/respond", swapHandler.Respond)
		api.POST("/swaps/:id/cancel", swapHandler.Cancel)

		api.GET("/tas", taHandler.List)
		api.POST("/tas", taHandler.Create)
		api.GET("/tas/:email", taHandler.Get)
		api.GET("/tas/:email/department", taHandler.Department)
		api.GET("/tas/:email/schedule", taHandler.Schedule)
		api.PUT("/tas/:email/schedule", taHandler.ReplaceSchedule)
		api.GET("/tas/:email/leaves", taHandler.Leaves)
		api.POST("/tas/:email/leaves", taHandler.RequestLeave)
		api.POST("/tas/:email/allocations", taHandler.Allocate)
		api.POST("/leaves/:id/review", taHandler.ReviewLeave)

		api.GET("/staff", staffHandler.List)
		api.POST("/staff", staffHandler.Create)

		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", settingsHandler.Update)

		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
