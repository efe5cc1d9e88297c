package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/llc-formation-platform/cmd/mainconfig"
	"github.com/wolfman30/llc-formation-platform/internal/admin"
	"github.com/wolfman30/llc-formation-platform/internal/api/router"
	"github.com/wolfman30/llc-formation-platform/internal/app/bootstrap"
	"github.com/wolfman30/llc-formation-platform/internal/applications"
	"github.com/wolfman30/llc-formation-platform/internal/assistant"
	appconfig "github.com/wolfman30/llc-formation-platform/internal/config"
	"github.com/wolfman30/llc-formation-platform/internal/contacts"
	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/internal/notify"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/internal/webchat"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

func main() {
	// Local runs keep secrets in .env; a missing file is fine.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting llc-formation-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"postgres", cfg.UsePostgres(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if a.deliverer != nil {
		go a.deliverer.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler   http.Handler
	deliverer *events.Deliverer
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires every service. Without DATABASE_URL it runs fully in
// memory, and without REDIS_ADDR chat transcripts stay in process.
func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	metricsHandler, m := setupMetrics()

	var appRepo applications.Repository = applications.NewInMemoryRepository()
	var contactRepo contacts.Repository = contacts.NewInMemoryRepository()
	var convLister admin.ConversationLister
	chatOpts := []assistant.Option{
		assistant.WithReplyDelay(cfg.ChatReplyDelay),
		assistant.WithMetrics(m),
		assistant.WithLogger(logger),
	}

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if cfg.UsePostgres() && pool == nil {
		return nil, fmt.Errorf("postgres configured but unreachable")
	}
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
		appRepo = applications.NewPostgresRepository(pool)
		contactRepo = contacts.NewPostgresRepository(pool)

		archiveDB, err := openArchiveDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = archiveDB.Close() })
		archive := assistant.NewArchive(archiveDB)
		chatOpts = append(chatOpts, assistant.WithArchive(archive))
		convLister = archive
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
	}
	transcripts := bootstrap.BuildTranscriptStore(redisClient, cfg)

	var sesClient *sesv2.Client
	if bootstrap.NeedsSESClient(cfg) {
		client, err := mainconfig.NewSESClient(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load AWS config, SES disabled", "error", err)
		} else {
			sesClient = client
		}
	}
	sender, provider, reason := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	logger.Info("operator e-mail configured", "provider", provider, "reason", reason)
	notifier := notify.NewService(sender, bootstrap.NotifyRecipients(cfg), logger)

	publisher, deliverer := bootstrap.BuildPublisher(pool, notifier, cfg, logger)
	a.deliverer = deliverer

	appSvc := applications.NewService(appRepo, publisher, m, logger)
	contactSvc := contacts.NewService(contactRepo, publisher, m, logger)
	chat := assistant.NewService(transcripts, chatOpts...)

	a.handler = router.New(&router.Config{
		Logger:             logger,
		Metrics:            m,
		ApplicationHandler: applications.NewHandler(appSvc, logger),
		ContactHandler:     contacts.NewHandler(contactSvc, logger),
		ChatHandler:        webchat.NewHandler(chat, logger),
		AdminHandler:       admin.NewHandler(appSvc, contactSvc, convLister, m, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRateLimit:    cfg.PublicRateLimit,
		PublicBurst:        cfg.PublicRateBurst,
		Ready: func(ctx context.Context) error {
			if pool == nil {
				return nil
			}
			return pool.Ping(ctx)
		},
	})
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin routes are disabled")
	}
	return a, nil
}

// setupMetrics builds a dedicated registry so tests can create as many
// apps as they like without duplicate registration panics.
func setupMetrics() (http.Handler, *metrics.IntakeMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewIntakeMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(connectCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// openArchiveDB opens the database/sql handle used by the chat archive.
func openArchiveDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
