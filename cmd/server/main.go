package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"municipal/internal/platform/config"
	"municipal/internal/platform/database"
	"municipal/internal/platform/httpserver"
	"municipal/internal/platform/logger"
	platformmetrics "municipal/internal/platform/metrics"
	"municipal/internal/platform/middleware"
	platformredis "municipal/internal/platform/redis"
	"municipal/internal/records"
	"municipal/internal/records/guard"
	recordmetrics "municipal/internal/records/metrics"
	"municipal/internal/records/service"
)

// main wires the record store, the optional claim guard and the HTTP surface,
// and shuts everything down on SIGINT or SIGTERM.
func main() {
	configPath := flag.String("config", os.Getenv("MUNICIPAL_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	checks := map[string]httpserver.Check{}

	stores := records.MemoryStores()
	if cfg.Store.Driver != config.DriverMemory {
		db, dialect, err := database.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeDB(db, log)
		stores = records.SQLStores(db, dialect)
		checks["store"] = db.PingContext
	} else {
		checks["store"] = func(context.Context) error { return nil }
	}

	var claims guard.Claims = guard.Nop{}
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		claims = guard.NewRedis(rdb.Client, guard.WithTTL(cfg.Redis.ClaimTTL))
		checks["redis"] = rdb.Health
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformmetrics.New(registry)

	svcs := records.NewServices(stores,
		service.WithLogger(log),
		service.WithMetrics(recordmetrics.New(registry)),
		service.WithClaims(claims),
	)

	r := chi.NewRouter()
	r.Use(middleware.Standard(log, httpMetrics)...)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}
	r.Get("/healthz", httpserver.Health(checks))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	records.NewHandler(svcs, log).Register(r)

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting municipal records server",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Driver,
			"claims", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}
