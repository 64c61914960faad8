package dispatchservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"sivec/internal/general/config"
	"sivec/internal/general/jwt"
	"sivec/internal/general/logger"
	"sivec/internal/general/notify"
	"sivec/internal/general/postgres"
	"sivec/internal/general/rabbitmq"
	"sivec/internal/general/roster"
	"sivec/internal/general/websocket"
	dispatchhandler "sivec/internal/software/dispatch/handler"
	dispatchservice "sivec/internal/software/dispatch/service"
	fleethandler "sivec/internal/software/fleet/handler"
	fleetservice "sivec/internal/software/fleet/service"
	reportshandler "sivec/internal/software/reports/handler"
	reportsservice "sivec/internal/software/reports/service"
)

// Run wires the dispatch service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// static request ID for startup logs
	logger := logger.New("dispatch-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	// read-only gateway to the HR-owned driver roster
	rosterGW, err := roster.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "roster_connection_failed", "Failed to connect to external roster", err, nil)
		return err
	}
	defer rosterGW.Close()

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	pub := rabbitmq.NewMQPublisher(rmq)

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// repos
	uow := postgres.NewUnitOfWork(pool)
	tripRepo := postgres.NewTripRepo()
	assignmentRepo := postgres.NewAssignmentRepo()
	noteRepo := postgres.NewDeliveryNoteRepo()
	vehicleRepo := postgres.NewVehicleRepo(pool)
	tempDriverRepo := postgres.NewTemporaryDriverRepo(pool)
	reportRepo := postgres.NewReportRepo(pool)

	// screens hub + broker notifier
	hub := websocket.NewHub(logger)
	notifier := notify.New(pub, hub, logger, "dispatch-service")

	// services
	fleetSvc := fleetservice.NewService(vehicleRepo, tempDriverRepo, rosterGW, logger)
	dispatchSvc := dispatchservice.NewService(uow, tripRepo, assignmentRepo, noteRepo, vehicleRepo, fleetSvc, notifier, logger)
	reportsSvc := reportsservice.NewService(reportRepo, logger)

	// HTTP surface
	mux := http.NewServeMux()
	dispatchhandler.NewDispatchHTTPHandler(dispatchSvc, logger, jwtManager, hub).RegisterRoutes(mux)
	fleethandler.NewFleetHTTPHandler(fleetSvc, logger, jwtManager).RegisterRoutes(mux)
	reportshandler.NewReportsHTTPHandler(reportsSvc, logger, jwtManager).RegisterRoutes(mux)

	// concurrency limiter (global) — blocks when capacity is full
	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.DispatchServicePort),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Dispatch Service started on port %d", cfg.Services.DispatchServicePort),
		map[string]any{"port": cfg.Services.DispatchServicePort, "max_concurrent": maxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Dispatch Service shutting down", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.Services.DispatchServicePort})
			return err
		}
		return nil
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
