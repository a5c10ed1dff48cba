package main

import (
	"context"
	"errors"
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
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-report-engine/api/swagger"
	"github.com/noah-isme/sma-report-engine/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-report-engine/internal/middleware"
	"github.com/noah-isme/sma-report-engine/internal/repository"
	"github.com/noah-isme/sma-report-engine/internal/service"
	"github.com/noah-isme/sma-report-engine/pkg/cache"
	"github.com/noah-isme/sma-report-engine/pkg/config"
	"github.com/noah-isme/sma-report-engine/pkg/database"
	"github.com/noah-isme/sma-report-engine/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-report-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-report-engine/pkg/middleware/requestid"
)

// @title SMA Report Engine
// @version 1.0.0
// @description Report assembly over the school record store.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db.PingContext}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, notifications disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	gw := service.Gateway{
		Students:      repository.NewStudentRepository(db),
		Profiles:      repository.NewProfileRepository(db),
		Classes:       repository.NewClassRepository(db),
		Subjects:      repository.NewSubjectRepository(db),
		Sessions:      repository.NewSessionRepository(db),
		Attendance:    repository.NewAttendanceRepository(db),
		Exams:         repository.NewExamRepository(db),
		Results:       repository.NewExamResultRepository(db),
		FeeRecords:    repository.NewFeeRecordRepository(db),
		FeeStructures: repository.NewFeeStructureRepository(db),
		Payments:      repository.NewPaymentRepository(db),
	}
	opts := service.AssemblyOptions{
		PassPercentage: cfg.Reports.PassPercentage,
		SearchLimit:    cfg.Reports.SearchLimit,
		FetchTimeout:   cfg.Reports.FetchTimeout,
	}
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var feeSvc *service.FeeService
	if redisClient != nil && cfg.Notifications.Enabled {
		publisher := repository.NewNotificationPublisher(redisClient, cfg.Notifications.Channel, logr)
		ledger := repository.NewReminderLedger(redisClient, logr)
		feeSvc = service.NewFeeService(gw, opts, publisher, ledger, cfg.Notifications.Cooldown, validate, metricsSvc, logr)
	} else {
		feeSvc = service.NewFeeService(gw, opts, nil, nil, 0, validate, metricsSvc, logr)
	}
	exportSvc := service.NewExportService(nil, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, r.Group(cfg.APIPrefix), handler.Handlers{
		Roster:   handler.NewRosterHandler(service.NewRosterService(gw, opts, metricsSvc, logr), exportSvc),
		Reports:  handler.NewReportHandler(service.NewAttendanceReportService(gw, opts, metricsSvc, logr), service.NewExamReportService(gw, opts, metricsSvc, logr), exportSvc),
		Fees:     handler.NewFeeHandler(feeSvc, exportSvc),
		Search:   handler.NewSearchHandler(service.NewSearchService(gw, opts, validate, metricsSvc, logr)),
		Sessions: handler.NewSessionHandler(service.NewSessionService(gw, repository.NewSessionRepository(db), opts, validate, metricsSvc, logr)),
		Metrics:  handler.NewMetricsHandler(metricsSvc, checks),
	})

	if cfg.Env != config.EnvProduction && cfg.Reports.DocsEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
