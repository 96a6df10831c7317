package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/ndvi-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ndvi-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/ndvi-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/ndvi-dashboard/internal/config"
	"github.com/couchcryptid/ndvi-dashboard/internal/observability"
	"github.com/couchcryptid/ndvi-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var datasetOpts []pipeline.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		datasetOpts = append(datasetOpts, pipeline.WithNotifier(writer))
		logger.Info("dataset events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	dataset := pipeline.NewDataset(cfg.DataPath, logger, metrics, datasetOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Nothing can be shown without the dataset, so fail fast.
	if _, err := dataset.Table(ctx); err != nil {
		logger.Error("failed to load dataset", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	serverOpts := []httpadapter.Option{
		httpadapter.WithTitle(cfg.Title),
		httpadapter.WithBackground(cfg.BackgroundImage),
	}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		serverOpts = append(serverOpts, httpadapter.WithGeocoder(geocoder, cfg.MapboxCountry))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, dataset, metrics, logger, serverOpts...)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
