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

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/gymops/gymops/internal/app"
	"github.com/gymops/gymops/internal/auth"
	"github.com/gymops/gymops/internal/console"
	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/observability"
	"github.com/gymops/gymops/internal/platform/cache"
	"github.com/gymops/gymops/internal/platform/db"
	"github.com/gymops/gymops/internal/shared"
	"github.com/gymops/gymops/internal/view"
	"github.com/gymops/gymops/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A local .env only fills variables the environment leaves unset.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, db.Options{
		DSN:              cfg.PGDSN,
		MaxConns:         cfg.PGMaxConns,
		StatementTimeout: cfg.PGStatementTimeout,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, PoolSize: cfg.RedisPoolSize})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "gymops_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	provider := auth.NewSessionProvider(authService, auth.ProviderConfig{
		ResolveTimeout: cfg.RoleResolveTimeout,
		LookupTimeout:  cfg.RoleLookupTimeout,
		CacheTTL:       cfg.RoleCacheTTL,
		Logger:         logger,
		Metrics:        metrics,
	})
	registry, err := console.NewRegistry(console.DefaultComponents()...)
	if err != nil {
		logger.Error("build component registry", slog.Any("error", err))
		os.Exit(1)
	}
	table, err := console.NewTable(registry)
	if err != nil {
		logger.Error("build route table", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("route table ready", slog.Int("routes", len(table.Routes())))
	evaluator := navigation.NewEvaluator(table, navigation.WithLoginPath(cfg.LoginPath))

	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, provider).
		WithLoginPath(cfg.LoginPath).
		WithReturnTo(evaluator)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	var audit console.AuditSink
	if cfg.NavAuditEnabled {
		jobClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		audit = jobClient
	}

	consoleHandler, err := console.NewHandler(console.HandlerConfig{
		Logger:     logger,
		Evaluator:  evaluator,
		Registry:   registry,
		Templates:  templates,
		Sessions:   provider,
		CSRF:       csrfManager,
		Metrics:    metrics,
		Audit:      audit,
		RetryAfter: cfg.PendingRetryAfter,
	})
	if err != nil {
		logger.Error("init console handler", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		ConsoleHandler: consoleHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
