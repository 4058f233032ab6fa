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

	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/koi-console/internal/config"
	"github.com/jcmexdev/koi-console/internal/mockapi"
	"github.com/jcmexdev/koi-console/internal/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.TryReadMockAPI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	opts := mockapi.Options{
		PaymentThreshold: cfg.PaymentThreshold,
		PaymentBaseURL:   cfg.PaymentBaseURL,
		Seed:             cfg.Seed,
	}
	if cfg.Latency > 0 {
		opts.Delay = func(*http.Request) time.Duration { return cfg.Latency }
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mockapi.New(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("mock koi api running", "addr", cfg.Addr, "payment_threshold", cfg.PaymentThreshold)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("mock api stopped with error", "error", err)
		os.Exit(1)
	}
}
