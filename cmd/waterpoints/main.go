package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/waterpoints-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/waterpoints-service/internal/adapter/kafka"
	"github.com/couchcryptid/waterpoints-service/internal/adapter/opendata"
	"github.com/couchcryptid/waterpoints-service/internal/adapter/postgres"
	"github.com/couchcryptid/waterpoints-service/internal/adapter/qr"
	"github.com/couchcryptid/waterpoints-service/internal/catalog"
	"github.com/couchcryptid/waterpoints-service/internal/config"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
	"github.com/couchcryptid/waterpoints-service/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The store connects lazily; an unreachable database degrades reporting
	// and issue types but never stops the map from serving.
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		logger.Warn("database unreachable at startup", "error", err)
	} else if cfg.DatabaseMigrate {
		if err := store.Migrate(ctx); err != nil {
			logger.Error("database migration failed", "error", err)
		}
	}

	sources := make([]catalog.FeatureSource, 0, len(cfg.CatalogURLs))
	for _, u := range cfg.CatalogURLs {
		sources = append(sources, opendata.NewClient(u, cfg.OpenDataTimeout, logger))
	}
	loader := catalog.NewLoader(sources, store, logger, metrics, nil)
	cat := catalog.New(loader, logger, metrics, nil)

	// Report events are feature-flagged via KAFKA_ENABLED.
	var publisher report.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("report events enabled", "topic", cfg.KafkaReportsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("report events disabled")
	}

	submitter := report.NewSubmitter(store, publisher, logger, metrics)
	renderer := qr.NewRenderer(cfg.QRSize, cfg.QRCacheSize, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Catalog:   cat,
		Reports:   store,
		Submitter: submitter,
		QR:        renderer,
		Ready:     cat,
		Metrics:   metrics,
		BaseURL:   cfg.PublicBaseURL,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start catalog refresher.
	go func() {
		if err := cat.Run(ctx, cfg.CatalogRefreshInterval); err != nil {
			logger.Error("catalog refresher error", "error", err)
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
