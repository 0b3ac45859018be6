// Command briefingd consumes route requests from Kafka, builds NOTAM briefings
// against the FAA NOTAM API and publishes them to the sink topic. It also
// serves POST /v1/briefings plus health, readiness and metrics over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/notam-briefing/internal/adapter/airports"
	"github.com/couchcryptid/notam-briefing/internal/adapter/faa"
	"github.com/couchcryptid/notam-briefing/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/notam-briefing/internal/adapter/kafka"
	"github.com/couchcryptid/notam-briefing/internal/briefing"
	"github.com/couchcryptid/notam-briefing/internal/config"
	"github.com/couchcryptid/notam-briefing/internal/observability"
	"github.com/couchcryptid/notam-briefing/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFrom(cfg, "notam-briefing"), logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	db, err := airports.Open(cfg.AirportsPath)
	if err != nil {
		logger.Error("failed to load airport data", "error", err)
		os.Exit(1)
	}
	logger.Info("airport data loaded", "path", cfg.AirportsPath, "airports", db.Len())

	source := faa.NewSource(cfg, logger, metrics)
	svc := briefing.NewService(db, source, briefing.Config{GapNM: cfg.RouteGapNM, RadiusNM: cfg.RouteRadiusNM}, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(svc, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, svc, cfg.FAATimeout, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start briefing pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
