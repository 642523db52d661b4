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

	_ "github.com/noah-isme/edu-schedule-api/api/swagger"
	"github.com/noah-isme/edu-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/edu-schedule-api/internal/middleware"
	"github.com/noah-isme/edu-schedule-api/internal/repository"
	"github.com/noah-isme/edu-schedule-api/internal/service"
	"github.com/noah-isme/edu-schedule-api/pkg/cache"
	"github.com/noah-isme/edu-schedule-api/pkg/config"
	"github.com/noah-isme/edu-schedule-api/pkg/database"
	"github.com/noah-isme/edu-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-schedule-api/pkg/middleware/requestid"
)

// @title Edu Schedule API
// @version 1.0.0
// @description Recurring lesson generation and schedule conflict detection
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
		if version, err := database.Version(ctx, db); err == nil {
			logr.Info("database migrated", zap.Int64("version", version))
		}
	}

	readiness := map[string]handler.Pinger{"postgres": db}

	var locker interface {
		Acquire(ctx context.Context, keys []string) (func(), error)
	} = service.NewLocalLocker(cfg.Scheduler.LockWait)
	if cfg.Scheduler.LocksEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, falling back to in-process schedule locks", zap.Error(err))
		} else {
			defer redisClient.Close()
			locker = repository.NewScheduleLockRepository(redisClient, logr, cfg.Scheduler.LockTTL, cfg.Scheduler.LockWait)
			readiness["redis"] = cache.Pinger{Client: redisClient}
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	groupRepo := repository.NewGroupRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	detector := service.NewConflictDetector(lessonRepo, enrollmentRepo, logr)
	scheduleSvc := service.NewLessonScheduleService(groupRepo, lessonRepo, detector, locker, db, metrics, validate, logr, service.LessonScheduleConfig{
		MaxRangeDays:  cfg.Scheduler.MaxRangeDays,
		MaxBulkGroups: cfg.Scheduler.MaxBulkGroups,
		Location:      cfg.Scheduler.Location(),
	})
	exportSvc := service.NewLessonExportService(groupRepo, lessonRepo, validate, logr, cfg.Scheduler.MaxRangeDays)
	enrollmentSvc := service.NewEnrollmentConflictService(groupRepo, enrollmentRepo, validate, logr)
	verifier := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterOpsRoutes(r, handler.NewMetricsHandler(metrics, readiness))
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), internalmiddleware.JWT(verifier), handler.Handlers{
		Lessons:     handler.NewLessonScheduleHandler(scheduleSvc, exportSvc),
		Enrollments: handler.NewEnrollmentConflictHandler(enrollmentSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
