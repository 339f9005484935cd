// Command mqbridged runs the message-bridge daemon: it loads the configured
// bindings, starts them concurrently, and serves the health/metrics HTTP
// surface until an interrupt or termination signal arrives.
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

	"github.com/kubemq-io/mq-bridge/internal/httpapi"
	"github.com/kubemq-io/mq-bridge/internal/observability"
	"github.com/kubemq-io/mq-bridge/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := observability.NewZapLogger(getenv("LOG_LEVEL", "INFO"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mqbridged: failed to initialize logger: %v\n", err)
		return 1
	}

	ctx := context.Background()
	configPath := getenv("CONFIG_PATH", "config.yaml")
	apiHost := getenv("API_HOST", "0.0.0.0")
	apiPort := getenv("API_PORT", "9000")

	sup := supervisor.New(logger)
	if err := sup.Init(configPath); err != nil {
		logger.Error(ctx, "configuration rejected", observability.Error(err))
		return 1
	}
	logger.Info(ctx, "configuration loaded", observability.Int("binding_count", sup.BindingCount()))

	sup.Start(ctx)
	logger.Info(ctx, "bindings started")

	server := httpapi.New(fmt.Sprintf("%s:%s", apiHost, apiPort), sup, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting http server", observability.String("address", apiHost+":"+apiPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error(ctx, "http server failed to start", observability.Error(err))
		sup.Stop(ctx)
		return 1
	case sig := <-sigCh:
		logger.Info(ctx, "signal received, shutting down", observability.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "http server shutdown error", observability.Error(err))
	}
	sup.Stop(shutdownCtx)
	logger.Info(ctx, "shutdown complete")
	return 0
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
