package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gaedke-construction/smartquote/cmd/mainconfig"
	"github.com/gaedke-construction/smartquote/internal/analytics"
	"github.com/gaedke-construction/smartquote/internal/api/router"
	"github.com/gaedke-construction/smartquote/internal/chat"
	appconfig "github.com/gaedke-construction/smartquote/internal/config"
	"github.com/gaedke-construction/smartquote/internal/eventlog"
	httpmiddleware "github.com/gaedke-construction/smartquote/internal/http/middleware"
	"github.com/gaedke-construction/smartquote/internal/leads"
	"github.com/gaedke-construction/smartquote/internal/notify"
	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
	"github.com/gaedke-construction/smartquote/internal/quote"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting smartquote API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"email_provider", cfg.EmailProvider,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	metricsHandler, quoteMetrics := setupMetrics()

	// Lead storage and delivery
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	leadsRepo, archives := setupLeadStorage(cfg, pool, awsCfg, logger)
	if purger, ok := leadsRepo.(leadPurger); ok {
		startLeadPurger(ctx, purger, cfg.LeadRetention, time.Hour, logger)
	}
	emailSender := setupEmailSender(cfg, awsCfg, logger)
	notifier := notify.NewService(emailSender, cfg.LeadEmailTo, notify.ServiceOptions{
		Journal:  eventlog.NewJournal(cfg.LeadLogPath),
		Archives: archives,
		Metrics:  quoteMetrics,
	}, logger)

	// Analytics
	store, counter, closeAnalytics := setupAnalytics(ctx, cfg, logger)
	defer closeAnalytics()
	tracker := analytics.NewTracker(store, counter, quoteMetrics, logger)

	// Model gateway
	generator, lister, closeGenerator, err := mainconfig.NewGenerator(ctx, cfg, awsCfg)
	if err != nil {
		logger.Error("failed to initialize model provider", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}
	defer closeGenerator()

	var responder chat.Responder
	if generator != nil {
		gateway := quote.NewGateway(generator, cfg.ModelCandidates, quoteMetrics, logger)
		dispatcher := quote.NewDispatcher(notifier, logger)
		responder = quote.NewService(gateway, dispatcher, quote.ServiceConfig{
			SystemPrompt: cfg.SystemPrompt,
			LeadSource:   cfg.LeadSource,
		}, quoteMetrics, logger)
	} else {
		logger.Warn("no model credentials configured; /api/chat will answer with Missing API Key")
	}

	// Initialize handlers
	chatHandler := chat.NewHandler(chat.HandlerConfig{
		Responder:     responder,
		Models:        lister,
		Tracker:       tracker,
		BusinessPhone: cfg.BusinessPhone,
	}, logger)
	leadsHandler := leads.NewHandler(notifier, leadsRepo, logger)
	analyticsHandler := analytics.NewHandler(tracker, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		LeadsHandler:       leadsHandler,
		AnalyticsHandler:   analyticsHandler,
		MetricsHandler:     metricsHandler,
		RateLimiter:        httpmiddleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server. No write timeout: a chat turn may walk several
	// candidate models before answering.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics builds a private registry with runtime collectors and the
// quote metrics, and the handler that exports it.
func setupMetrics() (http.Handler, *metrics.QuoteMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewQuoteMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), m
}

// connectPostgresPool returns nil when url is empty or the database is unreachable.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres unreachable; leads fall back to memory", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres for lead archive")
	return pool
}

// setupLeadStorage picks the lead repository and the archives a delivered
// lead is copied to.
func setupLeadStorage(cfg *appconfig.Config, pool *pgxpool.Pool, awsCfg aws.Config, logger *logging.Logger) (leads.Repository, []leads.Archiver) {
	var repo leads.Repository
	if pool != nil {
		repo = leads.NewPostgresRepository(pool)
	} else {
		repo = leads.NewInMemoryRepository()
	}
	archives := []leads.Archiver{repo}

	if cfg.LeadArchiveBucket != "" {
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		if archive := leads.NewS3Archive(client, cfg.LeadArchiveBucket, cfg.Env); archive != nil {
			logger.Info("lead S3 archive enabled", "bucket", cfg.LeadArchiveBucket)
			archives = append(archives, archive)
		}
	}
	return repo, archives
}

type leadPurger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// startLeadPurger deletes archived leads older than retention every interval.
// A zero retention disables it.
func startLeadPurger(ctx context.Context, repo leadPurger, retention, interval time.Duration, logger *logging.Logger) bool {
	if repo == nil || retention <= 0 || interval <= 0 {
		return false
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				deleted, err := repo.Purge(ctx, now.Add(-retention))
				if err != nil {
					logger.Error("lead purge failed", "error", err)
					continue
				}
				if deleted > 0 {
					logger.Info("purged expired leads", "deleted", deleted, "retention", retention.String())
				}
			}
		}
	}()
	return true
}

// setupEmailSender selects the lead mail transport. Providers that are
// selected but unusable fall back to SMTP so the failure surfaces per lead.
func setupEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	smtp := func() notify.EmailSender {
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			FromName: cfg.EmailFromName,
		}, logger)
	}

	switch cfg.EmailProvider {
	case "stub":
		return notify.NewStubEmailSender(logger)
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
		logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; using smtp")
		return smtp()
	case "ses":
		if cfg.SESFromEmail == "" {
			logger.Warn("EMAIL_PROVIDER=ses but SES_FROM_EMAIL is empty; using smtp")
			return smtp()
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger)
	default:
		return smtp()
	}
}

// setupAnalytics returns the event store, an optional counter and a cleanup func.
func setupAnalytics(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (analytics.Store, analytics.Counter, func()) {
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var store analytics.Store = analytics.NewJSONLStore(cfg.AnalyticsLogPath)
	if cfg.AnalyticsDatabaseURL != "" {
		if db, err := openAnalyticsDB(ctx, cfg.AnalyticsDatabaseURL); err != nil {
			logger.Error("analytics database unavailable; using JSONL journal", "error", err, "path", cfg.AnalyticsLogPath)
		} else {
			closers = append(closers, func() { _ = db.Close() })
			store = analytics.NewSQLStore(db)
		}
	}

	var counter analytics.Counter
	if client := connectRedis(ctx, cfg, logger); client != nil {
		closers = append(closers, func() { _ = client.Close() })
		counter = analytics.NewRedisCounter(client, "")
	}
	return store, counter, cleanup
}

func openAnalyticsDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// connectRedis returns nil when REDIS_ADDR is unset or the server does not answer.
func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable; analytics counters disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
