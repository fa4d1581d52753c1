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
	"go.uber.org/zap"

	_ "github.com/noah-isme/tap-api/api/swagger"
	"github.com/noah-isme/tap-api/internal/handler"
	"github.com/noah-isme/tap-api/internal/repository"
	"github.com/noah-isme/tap-api/internal/server"
	"github.com/noah-isme/tap-api/internal/service"
	"github.com/noah-isme/tap-api/pkg/cache"
	"github.com/noah-isme/tap-api/pkg/config"
	"github.com/noah-isme/tap-api/pkg/database"
	"github.com/noah-isme/tap-api/pkg/export"
	"github.com/noah-isme/tap-api/pkg/jobs"
	"github.com/noah-isme/tap-api/pkg/lock"
	"github.com/noah-isme/tap-api/pkg/logger"
	"github.com/noah-isme/tap-api/pkg/payment"
	"github.com/noah-isme/tap-api/pkg/storage"
)

// @title Tutoring Platform API
// @version 1.0.0
// @description Instructors, students, courses, bookings, enrollments and payments
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type receiptEnqueuer interface {
	Enqueue(job jobs.Job) error
}

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.NewMigrator(db, logr).Migrate(ctx); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process lock and no catalog cache", zap.Error(err))
		redisClient = nil
	}

	var locker lock.Locker = lock.NewMemoryLock()
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		locker = lock.NewRedisLock(redisClient)
		cacheRepo = repository.NewCacheRepository(redisClient, "tap:")
	}

	var gateway payment.Gateway
	if cfg.Payments.MidtransServerKey != "" {
		gateway = payment.NewMidtransGateway(cfg.Payments.MidtransServerKey, cfg.Payments.MidtransProduction)
	}

	resumeFiles, err := storage.NewLocalStorage(cfg.Resumes.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare resume storage", zap.Error(err))
	}
	receiptFiles, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare receipt storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Resumes.SignedURLSecret, cfg.Resumes.SignedURLTTL)

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)
	pdf := export.NewPDFExporter()

	var receiptQueue *jobs.Queue
	var receipts receiptEnqueuer
	if cfg.Receipts.Enabled {
		receiptSvc := service.NewReceiptService(paymentRepo, studentRepo, receiptFiles, pdf, logr)
		receiptQueue = jobs.NewQueue("receipts", receiptSvc.Handle, jobs.QueueConfig{
			Workers:    cfg.Receipts.WorkerConcurrency,
			MaxRetries: cfg.Receipts.WorkerRetries,
			Logger:     logr,
			Observer:   metrics.ObserveJob,
		})
		receiptQueue.Start(context.Background())
		receipts = receiptQueue
	}

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	instructorSvc := service.NewInstructorService(instructorRepo, userRepo, repository.NewResumeRepository(db), slotRepo, resumeFiles, signer, service.ResumeConfig{
		MaxSizeBytes:   cfg.Resumes.MaxFileSizeBytes,
		AllowedMIMEs:   cfg.Resumes.AllowedMIMEs,
		DownloadPrefix: cfg.APIPrefix,
	}, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, userRepo, repository.NewPreferenceRepository(db), repository.NewBankDetailsRepository(db), courseRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, instructorRepo, cacheSvc, cfg.Catalog.CacheTTL, validate, logr)
	bookingSvc := service.NewBookingService(repository.NewBookingRepository(db), slotRepo, studentRepo, locker, cfg.Bookings.LockTTL, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(repository.NewEnrollmentRepository(db), courseRepo, studentRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, gateway, receipts, receiptFiles, export.NewCSVExporter(), pdf, service.PaymentConfig{
		Currency:   cfg.Payments.Currency,
		LinkPrefix: cfg.APIPrefix,
	}, validate, logr)

	router := server.NewRouter(server.Dependencies{
		Config: cfg,
		Logger: logr,
		Handlers: server.Handlers{
			Auth:        handler.NewAuthHandler(authSvc),
			Instructors: handler.NewInstructorHandler(instructorSvc, courseSvc),
			Students:    handler.NewStudentHandler(studentSvc),
			Payments:    handler.NewPaymentHandler(paymentSvc),
			Courses:     handler.NewCourseHandler(courseSvc),
			Bookings:    handler.NewBookingHandler(bookingSvc),
			Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
			Metrics:     handler.NewMetricsHandler(metrics.Handler(), db),
		},
		Tokens:   authSvc,
		Audit:    auditRepo,
		Observer: metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if receiptQueue != nil {
		receiptQueue.Stop()
	}
}
