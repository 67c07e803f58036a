package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/dashboard"
	apphttp "fintrack/internal/http"
	"fintrack/internal/interchange"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backend := cli.OpenGateway(context.Background(), logger, cfg)

	opts := []ledger.Option{ledger.WithLogger(logger)}
	var publisher *amqp.Client
	if cfg.EventsEnabled() {
		var err error
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			opts = append(opts, ledger.WithPublisher(publisher))
			logger.Info("Ledger events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	l := ledger.New(backend.Gateway, opts...)
	sheet := cli.OpenSheet(context.Background(), logger, cfg)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     l,
		Aggregator: dashboard.NewAggregator(l.Transactions, l.Debts, logger),
		Importer:   interchange.NewImporter(l.Transactions, logger),
		Exporter:   interchange.NewExporter(l.Transactions, l.Debts, sheet, logger),
		Backend:    backend.Gateway,
		Logger:     logger,
	}, apphttp.Options{
		DashboardCacheSize:  cfg.DashboardCacheSize,
		DashboardCacheTTL:   cfg.DashboardCacheTTL,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
		UpcomingDaysDefault: cfg.UpcomingDaysDefault,
	})

	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if publisher != nil {
			_ = publisher.Close()
		}
		if backend.Cleanup != nil {
			if err := backend.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
