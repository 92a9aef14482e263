package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	academicsapp "github.com/schoolpay/backend/internal/application/academics"
	auditapp "github.com/schoolpay/backend/internal/application/audit"
	identityapp "github.com/schoolpay/backend/internal/application/identity"
	ledgerapp "github.com/schoolpay/backend/internal/application/ledger"
	"github.com/schoolpay/backend/internal/infrastructure/auth"
	"github.com/schoolpay/backend/internal/infrastructure/config"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
	"github.com/schoolpay/backend/internal/infrastructure/persistence"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/tenant"
	"github.com/schoolpay/backend/internal/infrastructure/receipt"
	"github.com/schoolpay/backend/internal/interfaces/http/handler"
	"github.com/schoolpay/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.App.Name, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting SchoolPay Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Persistence-level tenant backstop: queries without an explicit
	// school_id condition are filtered by the school carried in the request
	// context
	tenant.EnableAutoSchoolFilter(db.DB, false)

	// Repositories
	schoolRepo := persistence.NewGormSchoolRepository(db.DB)
	yearRepo := persistence.NewGormAcademicYearRepository(db.DB)
	classRepo := persistence.NewGormClassRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	historyRepo := persistence.NewGormImportHistoryRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentTypeRepo := persistence.NewGormPaymentTypeRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Receipt pipeline: storage backend, optional PDF renderer, issuer
	var storage receipt.Storage
	switch cfg.Receipt.Storage {
	case "s3":
		s3Storage, err := receipt.NewS3Storage(&cfg.Receipt, log)
		if err != nil {
			log.Fatal("Failed to initialize S3 receipt storage", zap.Error(err))
		}
		storage = s3Storage
	default:
		fsStorage, err := receipt.NewFileSystemStorage(cfg.Receipt.OutputDir, log)
		if err != nil {
			log.Fatal("Failed to initialize filesystem receipt storage", zap.Error(err))
		}
		storage = fsStorage
	}
	var renderer receipt.PDFRenderer
	if cfg.Receipt.Format == "pdf" {
		renderer = receipt.NewChromedpRenderer(cfg.Receipt.RenderTimeout, log)
	}
	issuer := receipt.NewLedgerIssuer(receipt.NewIssuer(cfg.Receipt.Format, storage, renderer, log))

	// Application services
	recorder := auditapp.NewRecorder(auditRepo)
	schoolService := identityapp.NewSchoolService(schoolRepo, recorder)
	yearService := academicsapp.NewAcademicYearService(yearRepo, schoolRepo, recorder)
	classService := academicsapp.NewClassService(classRepo, yearRepo, schoolRepo, recorder)
	importService := academicsapp.NewStudentImportService(
		studentRepo, classRepo, yearRepo, schoolRepo, historyRepo, recorder, cfg.Import)
	paymentService := ledgerapp.NewPaymentService(
		paymentRepo, paymentTypeRepo, studentRepo, schoolRepo, issuer, recorder)
	paymentTypeService := ledgerapp.NewPaymentTypeService(paymentTypeRepo, schoolRepo, recorder)

	// Token verification; revocation is best effort and falls back to an
	// in-process blacklist when Redis is unreachable
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected")
	}

	engine, err := router.New(router.Options{
		Config:         cfg,
		Logger:         log,
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Handlers: router.Handlers{
			System:       handler.NewSystemHandler(cfg),
			School:       handler.NewSchoolHandler(schoolService),
			AcademicYear: handler.NewAcademicYearHandler(yearService),
			Class:        handler.NewClassHandler(classService),
			Student:      handler.NewStudentHandler(importService),
			PaymentType:  handler.NewPaymentTypeHandler(paymentTypeService),
			Payment:      handler.NewPaymentHandler(paymentService),
			Audit:        handler.NewAuditHandler(recorder),
		},
	})
	if err != nil {
		log.Fatal("Failed to assemble router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
