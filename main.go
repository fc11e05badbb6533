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

	"go-photomap/client"
	"go-photomap/config"
	"go-photomap/cronjobs"
	"go-photomap/db"
	"go-photomap/events"
	"go-photomap/logger"
	"go-photomap/mapview"
	"go-photomap/metrics"
	"go-photomap/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := db.NewBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open location store: %w", err)
	}
	defer backend.Close()

	m := metrics.New()
	snapshot := db.NewCachedStore(backend.Store, cfg.Refresh.CacheTTL, log)

	// Views read the snapshot in process unless a remote listing is configured.
	var loader mapview.Loader = snapshot
	if cfg.LocationsAPIURL != "" {
		log.Info("Map views fetch locations remotely", zap.String("url", cfg.LocationsAPIURL))
		loader = client.NewLocationsClient(cfg.LocationsAPIURL, cfg.FetchTimeout)
	}

	views := mapview.NewRegistry(loader, cfg.ViewTTL, log, m)
	defer views.Close()

	scheduler, err := cronjobs.InitCronJobs(m.Instrument("cron", snapshot), cfg.Refresh.Schedule, log)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	r := routes.SetupRouter(routes.Deps{
		Loader:    snapshot,
		Refresher: m.Instrument("api", snapshot),
		Exporter:  backend.Exporter,
		Views:     views,
		Metrics:   m,
		Logger:    log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Kafka.Enabled() {
		consumer := events.NewConsumer(cfg.Kafka, m.Instrument("kafka", snapshot), cfg.Store.SnapshotKey, log)
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	if _, err := snapshot.Refresh(ctx); err != nil {
		log.Warn("Initial snapshot load failed; views start empty until the next refresh", zap.Error(err))
	}

	return g.Wait()
}
