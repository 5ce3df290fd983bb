package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	bohttp "github.com/daoteng/backoffice/internal/adapter/http"
	bonats "github.com/daoteng/backoffice/internal/adapter/nats"
	"github.com/daoteng/backoffice/internal/adapter/otel"
	"github.com/daoteng/backoffice/internal/adapter/postgres"
	"github.com/daoteng/backoffice/internal/adapter/ristretto"
	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/config"
	"github.com/daoteng/backoffice/internal/domain/pipeline"
	"github.com/daoteng/backoffice/internal/domain/stage"
	"github.com/daoteng/backoffice/internal/logger"
	"github.com/daoteng/backoffice/internal/middleware"
	"github.com/daoteng/backoffice/internal/service"
)

func main() {
	// "backoffice admin <cmd>" runs maintenance commands instead of the server.
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, configPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("config loaded",
		"config_file", configPath,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	shutdownTelemetry, err := otel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied")

	queue, err := bonats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() {
		if err := queue.Drain(); err != nil {
			log.Error("nats drain failed", "error", err)
		}
	}()
	log.Info("nats connected", "url", cfg.NATS.URL)

	memCache, err := ristretto.New(cfg.Cache.MaxSizeMB * 1024 * 1024)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// --- Domain configuration ---

	catalogs, err := stage.NewRegistry(cfg.Board.CatalogDir)
	if err != nil {
		return fmt.Errorf("stage catalogs: %w", err)
	}

	defs := pipeline.Defaults()
	if cfg.Board.PipelinesFile != "" {
		defs, err = pipeline.LoadFromFile(cfg.Board.PipelinesFile)
		if err != nil {
			return fmt.Errorf("pipelines: %w", err)
		}
	}
	pipelines, err := pipeline.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("pipelines: %w", err)
	}

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)

	boards, err := service.NewBoardService(store, queue, pipelines, catalogs, metrics, log)
	if err != nil {
		return fmt.Errorf("board service: %w", err)
	}

	authSvc := service.NewAuthService(store, memCache, &cfg.Auth)
	customerSvc := service.NewCustomerService(store, memCache, 30*time.Second, log)
	announcementSvc := service.NewAnnouncementService(store, queue, hub, log)
	historySvc := service.NewHistoryService(store, cfg.Board.HistoryLimit)
	dashboardSvc := service.NewDashboardService(boards, store)

	syncSvc := service.NewSyncService(boards, queue, hub, metrics, log, cfg.Board.PollInterval)
	syncSvc.OnCollectionChanged = func(ctx context.Context, collection string) {
		if collection == "members" {
			customerSvc.Invalidate(ctx)
		}
	}
	hub.OnConnect = syncSvc.InitialSnapshots

	go func() {
		if err := syncSvc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("sync service stopped", "error", err)
		}
	}()

	monitor := service.NewOverdueMonitor(boards, store, log)
	go monitor.Run(ctx, time.Hour)

	// --- HTTP ---

	handlers := &bohttp.Handlers{
		Auth:          authSvc,
		Boards:        boards,
		Dashboard:     dashboardSvc,
		Announcements: announcementSvc,
		Customers:     customerSvc,
		History:       historySvc,
		Hub:           hub,
	}

	// Brute-force protection on the login route only.
	loginLimiter := middleware.NewRateLimiter(1, 10)
	stopCleanup := loginLimiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	authEnabled := cfg.Auth.TokenSecret != ""
	if !authEnabled {
		log.Warn("auth.token_secret not set, running with authentication disabled")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(bohttp.Logger)
	r.Use(bohttp.SecurityHeaders)
	r.Use(bohttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.Auth(authSvc, authEnabled))

	bohttp.MountRoutes(r, handlers, loginLimiter)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
