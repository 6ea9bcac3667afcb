package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/resume-extractor/internal/bootstrap"
	"github.com/kirillkom/resume-extractor/internal/config"
	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/observability/logging"
)

const (
	serviceName  = "resume-worker"
	batchTimeout = 30 * time.Minute
)

func main() {
	cfg, err := config.FromEnvOrFile()
	if err != nil {
		logging.NewJSONLogger(serviceName, "info").Error("config_error", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, serviceName, cfg.LogLevel, cfg.LogFormat)
	if cfg.NATSURL == "" {
		logger.Error("config_error", "error", "NATS_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName, logger)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           app.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSRequestSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeBatchRequested(ctx, func(handlerCtx context.Context, req domain.BatchRequest) error {
		batchCtx, cancel := context.WithTimeout(handlerCtx, batchTimeout)
		defer cancel()

		result, err := app.IngestUC.Ingest(batchCtx, req, nil)
		if err != nil {
			return err
		}
		logger.Info("worker_batch_done",
			"batch_id", result.Report.BatchID,
			"processed", result.Report.Processed(),
			"failed", result.Report.Failed(),
			"output", req.OutputPath,
		)
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_error", "error", err)
		os.Exit(1)
	}
}
