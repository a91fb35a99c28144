package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	httphandler "github.com/ericfisherdev/deploylinks/internal/adapter/driving/http"
	"github.com/ericfisherdev/deploylinks/internal/application"
	"github.com/ericfisherdev/deploylinks/internal/config"
)

const (
	queueBacklog = 256
	queueWorkers = 8
	jobTimeout   = 2 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func serve(parent context.Context) error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"app_id", cfg.AppID,
		"bot_login", cfg.BotLogin,
		"appveyor_url", cfg.AppVeyorURL,
		"snapshot_url", cfg.SnapshotURL,
		"webhook_secret", cfg.HasWebhookSecret(),
	)
	if !cfg.HasWebhookSecret() {
		slog.Warn("webhook secret not configured, signatures will not be verified")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire adapters and services.
	c, err := wire(cfg)
	if err != nil {
		return err
	}

	// 4. Start the event queue. It drains in-flight jobs after ctx is done.
	queue := application.NewEventQueue(queueBacklog, queueWorkers, jobTimeout)
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		queue.Start(ctx)
	}()

	// 5. Create HTTP handler and register routes.
	h := httphandler.NewHandler(c.svc, c.clients, queue, cfg.WebhookSecret, cfg.BotLogin, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(h, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			stop()
		}
	}()

	// 6. Log startup complete.
	slog.Info("deploylinks started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown: stop accepting requests, then let queued jobs finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	select {
	case <-queueDone:
	case <-time.After(jobTimeout):
		slog.Warn("event queue did not drain in time")
	}

	// 9. Log shutdown complete.
	slog.Info("shutdown complete", "installations", c.clients.Len())

	select {
	case err := <-serverErr:
		return err
	default:
		return nil
	}
}
