package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lunchdesk/core/docs"
	httpHandlers "github.com/lunchdesk/core/internal/adapters/http"
	"github.com/lunchdesk/core/internal/adapters/repository"
	"github.com/lunchdesk/core/internal/application/services"
	"github.com/lunchdesk/core/internal/infrastructure/config"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/images"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	store    *csvstore.Store
	registry *prometheus.Registry
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance on top of an initialised store. A nil
// registry disables the /metrics endpoint.
func New(cfg *config.Config, store *csvstore.Store, registry *prometheus.Registry, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.IsDevelopment()

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	storeLogger := appLogger.WithComponent("csvstore")

	// Initialize repositories
	lunchRepo := repository.NewLunchRepository(store, storeLogger)
	orderRepo := repository.NewOrderRepository(store, storeLogger)
	expenseRepo := repository.NewExpenseRepository(store, storeLogger)
	snapshotRepo := repository.NewSnapshotRepository(store)

	// Initialize services
	lunchService := services.NewLunchService(lunchRepo, images.NewStore(cfg.Storage.UploadsDir), appLogger)
	orderService := services.NewOrderService(orderRepo, appLogger)
	expenseService := services.NewExpenseService(expenseRepo, appLogger)
	backupService := services.NewBackupService(snapshotRepo, appLogger)
	reportService := services.NewReportService(lunchRepo, orderRepo, expenseRepo, appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger,
		store:    store,
		registry: registry,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled && registry != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(routeHandlers{
		ping:     httpHandlers.NewPingHandler(),
		lunches:  httpHandlers.NewLunchHandler(lunchService, appLogger),
		orders:   httpHandlers.NewOrderHandler(orderService, appLogger),
		expenses: httpHandlers.NewExpenseHandler(expenseService, appLogger),
		backups:  httpHandlers.NewBackupHandler(backupService, appLogger),
		reports:  httpHandlers.NewReportHandler(reportService, appLogger),
	})

	return server, nil
}

type routeHandlers struct {
	ping     *httpHandlers.PingHandler
	lunches  *httpHandlers.LunchHandler
	orders   *httpHandlers.OrderHandler
	expenses *httpHandlers.ExpenseHandler
	backups  *httpHandlers.BackupHandler
	reports  *httpHandlers.ReportHandler
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation, not published in production
	if !s.config.App.IsProduction() {
		s.echo.GET("/docs/*", echoSwagger.WrapHandler)
	}

	// Uploaded lunch images
	s.echo.Static("/uploads", s.config.Storage.UploadsDir)

	api := s.echo.Group("/api")
	api.GET("/test", h.ping.Ping)

	lunchGroup := api.Group("/lunches")
	lunchGroup.GET("", h.lunches.ListLunches)
	lunchGroup.POST("", h.lunches.CreateLunch)
	lunchGroup.GET("/:id", h.lunches.GetLunch)
	lunchGroup.PUT("/:id", h.lunches.UpdateLunch)
	lunchGroup.DELETE("/:id", h.lunches.DeleteLunch)

	orderGroup := api.Group("/orders")
	orderGroup.GET("", h.orders.ListOrders)
	orderGroup.POST("", h.orders.CreateOrder)
	orderGroup.GET("/:id", h.orders.GetOrder)
	orderGroup.PUT("/:id", h.orders.UpdateOrder)
	orderGroup.DELETE("/:id", h.orders.DeleteOrder)

	expenseGroup := api.Group("/expenses")
	expenseGroup.GET("", h.expenses.ListExpenses)
	expenseGroup.POST("", h.expenses.CreateExpense)
	expenseGroup.GET("/:id", h.expenses.GetExpense)
	expenseGroup.PUT("/:id", h.expenses.UpdateExpense)
	expenseGroup.DELETE("/:id", h.expenses.DeleteExpense)

	backupGroup := api.Group("/backups")
	backupGroup.GET("/:collection", h.backups.ListSnapshots)
	backupGroup.POST("/:collection/restore", h.backups.RestoreSnapshot)
	backupGroup.POST("/:collection/prune", h.backups.PruneSnapshots)
	backupGroup.GET("/:collection/:name/verify", h.backups.VerifySnapshot)

	api.GET("/reports/export.xlsx", h.reports.ExportWorkbook)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	s.registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(metricsMiddleware(requestsTotal, requestDuration))

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	// The collections live in the data dir; without it every request fails
	info, err := os.Stat(s.store.DataDir())
	if err != nil || !info.IsDir() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "data_dir_unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := s.config.Server.Address()
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as {"error": message}
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// already rendered further down the chain
		if c.Response().Committed {
			return
		}

		var (
			code = http.StatusInternalServerError
			msg  string
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = e.Error()
		} else {
			msg = http.StatusText(code)
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
