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

	"github.com/iwvelando/fabric-estimator/internal/config"
	"github.com/iwvelando/fabric-estimator/internal/estimate"
	"github.com/iwvelando/fabric-estimator/internal/server"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func runServer(configPath, addressOverride, logLevelOverride string) error {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addressOverride != "" {
		cfg.Address = addressOverride
	}

	logger, err := initializeLogger(cfg.Logging, logLevelOverride)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := server.Options{
		MaxUploadSize: cfg.UploadSizeBytes(),
		Version:       version,
	}
	if cfg.CatalogFile != "" {
		catalog, err := config.LoadConfiguration(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("failed to load catalog at %s: %w", cfg.CatalogFile, err)
		}
		for _, warning := range catalog.ValidateConfiguration() {
			logger.Warn("Catalog warning: "+warning,
				zap.String("op", "main.runServer"),
			)
		}
		opts.Catalog = catalog
		opts.Integration, err = estimate.NewIntegration(logger, catalog.MakingCost)
		if err != nil {
			return fmt.Errorf("failed to configure making-cost integration: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting estimation API",
			zap.String("op", "main.runServer"),
			zap.String("address", cfg.Address),
			zap.String("maxUploadSize", cfg.MaxUploadSize),
			zap.Bool("catalog", opts.Catalog != nil),
			zap.Bool("makingCost", opts.Integration != nil),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down estimation API", zap.String("op", "main.runServer"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
