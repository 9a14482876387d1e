// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskhub_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_upload_extractions_total",
		Help: "Text extraction attempts by file type and result.",
	}, []string{"file_type", "result"})

	invoiceListings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_invoice_list_queries_total",
		Help: "Invoice listing executions by query strategy.",
	}, []string{"strategy"})
)

// Extraction results.
const (
	ExtractionOK     = "ok"
	ExtractionFailed = "failed"
)

// Invoice listing strategies.
const (
	StrategyProcedure = "procedure"
	StrategyFallback  = "fallback"
	StrategyQuery     = "query"
)

// ObserveExtraction records the outcome of one text extraction.
func ObserveExtraction(fileType, result string) {
	extractions.WithLabelValues(fileType, result).Inc()
}

// ObserveInvoiceListing records which strategy served an invoice listing.
func ObserveInvoiceListing(strategy string) {
	invoiceListings.WithLabelValues(strategy).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
