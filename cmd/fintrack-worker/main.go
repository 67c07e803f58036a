package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/interchange"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required to run the worker")
		os.Exit(1)
	}

	backend := cli.OpenGateway(context.Background(), logger, cfg)
	l := ledger.New(backend.Gateway, ledger.WithLogger(logger))

	var exporter worker.SheetExporter
	if sheet := cli.OpenSheet(context.Background(), logger, cfg); sheet != nil {
		exporter = interchange.NewExporter(l.Transactions, l.Debts, sheet, logger)
	}
	budgetWorker := worker.NewBudgetWorker(l.Budgets, exporter, logger)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		logger.Info("Shutting down worker...")
	})

	consumeErr := client.ConsumeWithRetry(ctx, budgetWorker.HandleLedgerEvent)

	_ = client.Close()
	if backend.Cleanup != nil {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}

	if consumeErr != nil && !errors.Is(consumeErr, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, consumeErr)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
