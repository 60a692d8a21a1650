package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/api"
	"github.com/kiddoconnect/campaign-service/internal/api/handler"
	"github.com/kiddoconnect/campaign-service/internal/config"
	"github.com/kiddoconnect/campaign-service/internal/db"
	"github.com/kiddoconnect/campaign-service/internal/dispatch"
	"github.com/kiddoconnect/campaign-service/internal/metrics"
	"github.com/kiddoconnect/campaign-service/internal/ratelimit"
	"github.com/kiddoconnect/campaign-service/internal/repository"
	"github.com/kiddoconnect/campaign-service/internal/scheduler"
	"github.com/kiddoconnect/campaign-service/internal/transport"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	tenants := repository.NewPgTenantRepository(pool)
	recipients := repository.NewPgRecipientRepository(pool)
	templates := repository.NewPgTemplateRepository(pool)
	campaigns := repository.NewPgCampaignRepository(pool)
	apiKeys := repository.NewPgAPIKeyRepository(pool)

	mailer := transport.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridURL, cfg.MailTimeout)
	limiter := ratelimit.New(cfg.SendRatePerSec)

	onCreated, onDuplicate := m.SchedulerHooks()
	scanner := scheduler.NewScanner(recipients, templates, cfg.ReminderOffsets)
	orchestrator := scheduler.NewOrchestrator(
		tenants, campaigns, scanner,
		cfg.Lookback, cfg.ScanConcurrency,
		logger, scheduler.MetricHooks{OnCreated: onCreated, OnDuplicate: onDuplicate},
	)

	onSent, onFailed := m.DispatchHooks()
	dispatcher := dispatch.NewDispatcher(
		campaigns, mailer, limiter,
		cfg.DispatchWorkers, cfg.DispatchBatchSize,
		logger, dispatch.MetricHooks{OnSent: onSent, OnFailed: onFailed},
	)

	// Background poller drives dispatch between manual trigger calls.
	pollerCtx, cancelPoller := context.WithCancel(ctx)
	defer cancelPoller()

	poller := dispatch.NewPoller(dispatcher, cfg.DispatchInterval, logger)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(pollerCtx)
	}()

	runHandler := handler.NewRunHandler(orchestrator, dispatcher, m.ObservePass, logger)
	recipientHandler := handler.NewRecipientHandler(recipients, apiKeys, logger)
	router := api.NewRouter(runHandler, recipientHandler, cfg.TriggerToken, reg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// Stop accepting HTTP traffic first, then stop the poller and wait
	// for its in-flight pass to drain.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	cancelPoller()
	<-pollerDone

	logger.Info("server stopped cleanly")
}
