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

	"github.com/jcmexdev/koi-console/internal/audit"
	auditsqlite "github.com/jcmexdev/koi-console/internal/audit/sqlite"
	"github.com/jcmexdev/koi-console/internal/config"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/infra/adapters/service"
	"github.com/jcmexdev/koi-console/internal/console/infra/httpx"
	"github.com/jcmexdev/koi-console/internal/console/infra/httpx/middlewares"
	"github.com/jcmexdev/koi-console/internal/console/screens"
	"github.com/jcmexdev/koi-console/internal/console/session"
	"github.com/jcmexdev/koi-console/internal/console/statusflow"
	"github.com/jcmexdev/koi-console/internal/console/store"
	"github.com/jcmexdev/koi-console/internal/coordinator"
	"github.com/jcmexdev/koi-console/internal/pkg/cache"
	"github.com/jcmexdev/koi-console/internal/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.TryRead()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTel.Tracer())
	if err != nil {
		slog.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			slog.Error("failed to shut down tracer", "error", err)
		}
	}()

	sessions := openSessionRepository(ctx, cfg.Redis)
	auditRepo, closeAudit := openAuditRepository(cfg.Audit)
	defer closeAudit()

	st := store.New(sessions)
	if err := st.Hydrate(ctx); err != nil {
		// An expired session is already wiped; start logged out.
		slog.WarnContext(ctx, "stored session not restored", "error", err)
	}

	client := service.NewClient(cfg.API.BaseURL, cfg.API.Paths(), cfg.API.Timeout, st.Token)
	orders := service.NewOrderServiceREST(client)
	prices := service.NewPriceServiceREST(client)
	payments := service.NewPaymentServiceREST(client)

	registry := screens.NewRegistry(screens.Deps{
		Orders:       orders,
		Prices:       prices,
		Content:      service.NewContentServiceREST(client),
		Machine:      statusflow.NewMachine(orders, auditRepo),
		Store:        st,
		FetchTimeout: cfg.API.Timeout,
	})
	warmUp(ctx, registry)

	enforcer, err := middlewares.NewEnforcer(middlewares.DefaultPolicy())
	if err != nil {
		slog.Error("failed to build authorization policy", "error", err)
		os.Exit(1)
	}
	handler := httpx.NewHandler(registry, st, coordinator.NewCheckout(orders, payments, auditRepo), prices, auditRepo)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpx.NewRouter(handler, enforcer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("koi console running", "addr", cfg.HTTP.Addr, "api", cfg.API.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("console stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("console stopped")
}

// openSessionRepository prefers Redis and falls back to process memory when
// it is not configured or not reachable.
func openSessionRepository(ctx context.Context, cfg config.RedisConfig) ports.SessionRepository {
	if cfg.Addr == "" {
		slog.Info("redis not configured, keeping sessions in memory")
		return session.NewMemoryRepository()
	}
	c := cache.NewRedisCache(cfg.Addr, cfg.Password, cfg.DB, cfg.Namespace)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		slog.Warn("redis unreachable, keeping sessions in memory", "addr", cfg.Addr, "error", err)
		return session.NewMemoryRepository()
	}
	return session.NewRedisRepository(c)
}

func openAuditRepository(cfg config.AuditConfig) (audit.Repository, func()) {
	if cfg.Path == "" {
		return audit.NewMemoryRepository(), func() {}
	}
	repo, err := auditsqlite.Open(cfg.Path)
	if err != nil {
		slog.Warn("audit log unavailable, keeping it in memory", "path", cfg.Path, "error", err)
		return audit.NewMemoryRepository(), func() {}
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			slog.Error("failed to close audit log", "error", err)
		}
	}
}

// warmUp loads the screens anyone can open so the first request is served
// from memory. Failures only leave the banner set.
func warmUp(ctx context.Context, registry *screens.Registry) {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []screens.Screen{registry.BlogFeed, registry.PriceManager} {
		g.Go(func() error {
			if err := s.Load(gctx); err != nil {
				slog.WarnContext(gctx, "screen warm-up failed", "screen", s.Name(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
