package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	chiTransport "github.com/kailas-cloud/docsearch/internal/transport/chi"
	backfilluc "github.com/kailas-cloud/docsearch/internal/usecase/backfill"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
	"github.com/kailas-cloud/docsearch/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := cmd.Context()
	store, err := openStore(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Metrics are served from the default registry.
	metrics.RegisterProviderMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterSearchMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterHTTPMetrics(prometheus.DefaultRegisterer)

	embs, err := buildEmbedders(&cfg, store, logger)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(&cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Providers configured",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("generation_model", cfg.Generation.Model),
	)

	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix)

	searchSvc := searchuc.New(docRepo, embs.query, generator, cfg.SearchSettings(), logger)
	docSvc := documentuc.New(docRepo, embs.document, generator, logger)
	healthSvc := healthuc.New(store, healthChecker(embs.document), healthChecker(generator), logger)

	services := chiTransport.Services{
		Search:    searchSvc,
		Documents: docSvc,
		Health:    healthSvc,
	}
	// Pass a nil interface (not a typed nil pointer) when backfill is unavailable.
	if embs.document != nil {
		backfillSvc, err := backfilluc.New(docRepo, embs.document, cfg.Backfill.Workers, logger)
		if err != nil {
			return fmt.Errorf("create backfill service: %w", err)
		}
		defer backfillSvc.Close()
		services.Backfill = backfillSvc
	}

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("No API keys configured, every owner-scoped request will be rejected")
	}

	handler := chiTransport.NewServer(services, logger).Router(chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// healthChecker exposes a provider to the health service when it can check itself.
func healthChecker(v any) healthuc.ProviderChecker {
	if hc, ok := v.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}
