package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/httpserver"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/ledgerstore"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/llm"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/mailer"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/redis"
	"github.com/mikeohgml-jpg/coaching-portal/internal/app"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
	"github.com/mikeohgml-jpg/coaching-portal/internal/notify"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/config"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/logging"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/version"
	goredis "github.com/redis/go-redis/v9"
)

const cacheEvictionInterval = time.Minute

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config, m *metrics.StoreMetrics) *ledgerstore.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := ledgerstore.OptionsFromConfig(cfg)
	opts.Metrics = m
	store, err := ledgerstore.Open(ctx, opts)
	if err != nil {
		slog.Error("Failed to open ledger backend", "backend", cfg.LedgerBackend, "error", err)
		os.Exit(1)
	}
	return store
}

// setupRedis returns nil when REDIS_URL is unset; numbers are then derived
// from the stored rows alone.
func setupRedis(cfg *config.Config, m *metrics.StoreMetrics, breakers redis.BreakerRecorder) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, number allocation is not coordinated across instances")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL,
		redis.NewMetricsHook(m),
		redis.NewCircuitBreakerHook(breakers),
	)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupGenerator(cfg *config.Config, m *metrics.NotificationMetrics) domain.TextGenerator {
	key := cfg.AIKey()
	if key == "" {
		slog.Info("No text generation key configured, using email templates only")
		return nil
	}
	return llm.NewClient(cfg.AIBaseURL, key, cfg.AIModel, cfg.AITimeout, m)
}

func setupMailer(cfg *config.Config, m *metrics.NotificationMetrics) domain.Mailer {
	if !cfg.MailEnabled() {
		slog.Warn("Mail delivery not configured, notifications will not be sent")
		return nil
	}
	mc, err := mailer.NewSMTPMailer(mailer.Config{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.GmailSenderEmail,
		Password:   cfg.GmailAppPassword,
		SenderName: cfg.GmailSenderName,
	}, m)
	if err != nil {
		slog.Error("Failed to create mailer", "error", err)
		os.Exit(1)
	}
	return mc
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"version", version.Get().String(),
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"backend", cfg.LedgerBackend,
	)

	reg := metrics.NewRegistry()
	notifyMetrics := metrics.NewNotificationMetrics(reg)
	storeMetrics := metrics.NewStoreMetrics(reg)

	store := setupStore(cfg, storeMetrics)
	defer store.Close()

	healthChecks := []httpserver.HealthCheck{{Name: "ledger", Check: store.Ping}}

	// Pass nil explicitly to avoid a typed-nil interface.
	var sequences ledger.SequenceAllocator
	if redisClient := setupRedis(cfg, storeMetrics, notifyMetrics); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		sequences = redis.NewSequenceAllocator(redisClient)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	cache := ledger.NewClientCache(cfg.ClientCacheTTL, clock, metrics.NewCacheMetrics(reg))
	stopEviction := cache.StartEvictionTimer(cacheEvictionInterval)
	defer stopEviction()

	clientLedger := ledger.New(store.Backend, cache, sequences, clock, metrics.NewLedgerMetrics(reg))

	renderer, err := notify.NewRenderer(setupGenerator(cfg, notifyMetrics), cfg.GmailSenderName, notifyMetrics)
	if err != nil {
		slog.Error("Failed to create notification renderer", "error", err)
		os.Exit(1)
	}

	appSvc := app.NewService(clientLedger, renderer, setupMailer(cfg, notifyMetrics), clock, app.AdminCredentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})

	srv, err := httpserver.NewServer(cfg, appSvc, healthChecks, reg)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
