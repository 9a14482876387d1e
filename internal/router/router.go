package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskhub/internal/auth"
	"taskhub/internal/cache"
	"taskhub/internal/config"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/handler"
	"taskhub/internal/metrics"
	appmw "taskhub/internal/middleware"
	"taskhub/internal/service"
)

// uploadBodyLimit leaves room for multipart framing around a 5 MiB file.
const uploadBodyLimit = "6M"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	cacheClient *cache.Client,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	taskHandler *handler.TaskHandler,
	uploadHandler *handler.UploadHandler,
	supplierHandler *handler.SupplierHandler,
	invoiceHandler *handler.InvoiceHandler,
) {
	e.HTTPErrorHandler = errorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(metrics.Middleware())
	e.Use(appmw.ForceJSON())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	throttle := appmw.Throttle(cacheClient, cfg.RateLimitPerMinute)

	// Public routes
	api.POST("/register", authHandler.Register, throttle)
	api.POST("/login", authHandler.Login, throttle)

	// Secured routes (require bearer token)
	secured := api.Group("", appmw.Bearer(jwtService), throttle)

	secured.GET("/me", userHandler.Me)

	secured.GET("/tasks", taskHandler.ListTasks)
	secured.POST("/tasks", taskHandler.CreateTask)
	secured.PUT("/tasks/:id", taskHandler.UpdateTask)
	secured.DELETE("/tasks/:id", taskHandler.DeleteTask)

	secured.GET("/uploads", uploadHandler.ListUploads)
	secured.POST("/uploads", uploadHandler.CreateUpload, uploadSizeLimit())
	secured.GET("/uploads/:id", uploadHandler.GetUpload)
	secured.DELETE("/uploads/:id", uploadHandler.DeleteUpload)

	// Supplier and invoice routes are public unless configured otherwise.
	invoicing := api
	if cfg.InvoicesRequireAuth {
		invoicing = secured
	}

	invoicing.GET("/suppliers", supplierHandler.ListSuppliers)
	invoicing.POST("/suppliers", supplierHandler.CreateSupplier)
	invoicing.GET("/suppliers/:id", supplierHandler.GetSupplier)
	invoicing.PUT("/suppliers/:id", supplierHandler.UpdateSupplier)
	invoicing.DELETE("/suppliers/:id", supplierHandler.DeleteSupplier)

	invoicing.GET("/invoices", invoiceHandler.ListInvoices)
	invoicing.POST("/invoices", invoiceHandler.CreateInvoice)
	invoicing.GET("/invoices/:id", invoiceHandler.GetInvoice)
	invoicing.PUT("/invoices/:id", invoiceHandler.UpdateInvoice)
	invoicing.DELETE("/invoices/:id", invoiceHandler.DeleteInvoice)
}

// uploadSizeLimit caps the upload body and reports an oversized request as
// an invalid file rather than a bare 413.
func uploadSizeLimit() echo.MiddlewareFunc {
	limit := middleware.BodyLimit(uploadBodyLimit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)
			if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				tooLarge := service.UploadTooLarge()
				mapped := apperrors.MapErrorToHTTP(tooLarge)
				return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(tooLarge)
			}
			return err
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			slog.LogAttrs(context.Background(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}
