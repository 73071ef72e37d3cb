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

	"github.com/spf13/cobra"

	"javinity/internal/config"
	"javinity/internal/janitor"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg.Log.Level)

	if err := config.Watch(func(next config.Config) {
		setLevel(logger, next.Log.Level)
		logger.Infof("config reloaded, log level %s", logger.GetLevel())
	}, func(err error) {
		logger.Warnf("config reload: %v", err)
	}); err != nil {
		logger.Debugf("config watch disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sweeper := janitor.New(janitor.Config{
		Interval: cfg.JanitorInterval(),
		MaxAge:   cfg.SessionTTL(),
		Logger:   logger,
	}, a.views)
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			sweeper.Shutdown()
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	sweeper.Shutdown()

	logger.Info("bye")
	return nil
}
