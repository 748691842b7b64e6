package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finagent/expense-pipeline/internal/bootstrap"
	"github.com/finagent/expense-pipeline/internal/config"
	"github.com/finagent/expense-pipeline/internal/core/domain"
	"github.com/finagent/expense-pipeline/internal/observability/logging"
	"github.com/finagent/expense-pipeline/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeForecastUpdates(ctx, func(handlerCtx context.Context, update domain.ForecastUpdate) error {
		applyCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.StartUpdate()
		start := time.Now()
		applyErr := app.ForecastUC.Apply(applyCtx, update)
		workerMetrics.FinishUpdate("worker", time.Since(start), applyErr)
		return applyErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
