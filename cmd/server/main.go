package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"taskhub/docs" // swagger docs

	"taskhub/internal/auth"
	"taskhub/internal/cache"
	"taskhub/internal/config"
	"taskhub/internal/db"
	"taskhub/internal/extract"
	"taskhub/internal/handler"
	"taskhub/internal/logging"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
	"taskhub/internal/router"
	"taskhub/internal/service"
	"taskhub/internal/storage"
)

// @title Taskhub API
// @version 1.0
// @description Tasks, uploads with text extraction, suppliers and invoices behind JWT authentication.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		fatal("database config", err)
	}
	gormDB, err := db.Open(driver, cfg.DBDSN)
	if err != nil {
		fatal("database init", err)
	}

	if cfg.ResetDB {
		slog.Warn("RESET_DB set, dropping all tables")
		db.Reset(gormDB)
	}
	if err := db.Migrate(gormDB); err != nil {
		fatal("migrate", err)
	}
	if cfg.UseInvoiceProcedure {
		// The listing falls back to the ORM query when the routine is missing.
		if err := db.InstallInvoiceProcedures(gormDB, driver); err != nil {
			slog.Warn("invoice procedure not installed", "error", err)
		}
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	notifier := newNotifier(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	uploadRepo := repository.NewUploadRepository(gormDB)
	supplierRepo := repository.NewSupplierRepository(gormDB)
	invoiceRepo := repository.NewInvoiceRepository(gormDB, repository.InvoiceListOptionsFor(driver, cfg.UseInvoiceProcedure))

	// Initialize auth and upload components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	extractor := extract.NewService(extract.PDFExtractor{}, extract.NewOCRExtractor(cfg.TesseractPath), cfg.ExtractionTimeout)
	fileStore := storage.NewDiskStore(cfg.UploadDir)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, notifier, cfg.AllowRoleSelfAssign)
	userService := service.NewUserService(userRepo, cacheClient)
	taskService := service.NewTaskService(taskRepo)
	uploadService := service.NewUploadService(uploadRepo, fileStore, extractor, cfg.ExtractionAsync)
	supplierService := service.NewSupplierService(supplierRepo, cacheClient)
	invoiceService := service.NewInvoiceService(invoiceRepo, supplierRepo)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		jwtService,
		cacheClient,
		handler.NewAuthHandler(authService, jwtService.TTL()),
		handler.NewUserHandler(userService),
		handler.NewTaskHandler(taskService),
		handler.NewUploadHandler(uploadService),
		handler.NewSupplierHandler(supplierService),
		handler.NewInvoiceHandler(invoiceService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server listening", "addr", addr, "driver", driver, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server start", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}

	uploadService.Close()
	if err := notifier.Close(); err != nil {
		slog.Warn("notifier close", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		slog.Warn("cache close", "error", err)
	}
}

// newNotifier publishes to Kafka when brokers are configured and logs events otherwise.
func newNotifier(cfg *config.Config) notify.Notifier {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.LogNotifier{}
	}
	kafka, err := notify.NewKafkaNotifier(notify.KafkaOptions{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaUserRegisteredTopic,
	})
	if err != nil {
		slog.Error("kafka unavailable, registration events will only be logged", "error", err)
		return notify.LogNotifier{}
	}
	return kafka
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
