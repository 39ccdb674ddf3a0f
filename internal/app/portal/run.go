// Package portal boots the adoption portal process.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	metricsbeacon "github.com/Apurer/adoptionos/internal/domains/metrics/adapters/beacon"
	metricsprom "github.com/Apurer/adoptionos/internal/domains/metrics/adapters/prometheus"
	metricsapp "github.com/Apurer/adoptionos/internal/domains/metrics/application"
	metricsports "github.com/Apurer/adoptionos/internal/domains/metrics/ports"
	platformobservability "github.com/Apurer/adoptionos/internal/platform/observability"
	platformpostgres "github.com/Apurer/adoptionos/internal/platform/postgres"
	"github.com/Apurer/adoptionos/internal/platform/storage/file"
	"github.com/Apurer/adoptionos/internal/platform/storage/memory"
	storageports "github.com/Apurer/adoptionos/internal/platform/storage/ports"
	storagepostgres "github.com/Apurer/adoptionos/internal/platform/storage/postgres"
	"github.com/Apurer/adoptionos/internal/platform/storage/sqlite"
	portalclients "github.com/Apurer/adoptionos/internal/portal"
	"github.com/Apurer/adoptionos/internal/portal/httpapi"
)

const (
	serviceName   = "adoptionos-portal"
	sweepInterval = time.Minute
)

// Run boots the portal HTTP API with observability, storage and metrics wired, and serves until
// ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
		LogLevel:     platformobservability.ParseLevel(cfg.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, err := OpenBackends(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := buildRecorder(cfg, gatherer, logger)
	if err != nil {
		return err
	}

	clients := portalclients.NewRegistry(portalclients.Deps{
		APIURL:         cfg.APIURL,
		RequestTimeout: cfg.RequestTimeout,
		Session:        backends.Session,
		Durable:        backends.Durable,
		Recorder:       recorder,
		Logger:         logger,
		Tracer:         instruments.Tracer("internal.pets.application"),
		Meter:          instruments.Meter("internal.pets.application"),
	}, portalclients.WithIdleTTL(cfg.IdleTTL))

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go clients.RunSweeper(sweepCtx, sweepInterval)

	server := httpapi.NewServer(clients,
		httpapi.WithLogger(logger),
		httpapi.WithGatherer(gatherer),
		httpapi.WithTracing(serviceName),
		httpapi.WithSecureCookies(cfg.SecureCookies),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening",
			slog.String("addr", srv.Addr), slog.String("storage", cfg.Storage), slog.String("api", cfg.APIURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("portal server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown portal: %w", err)
	}
	logger.Info("portal stopped")
	return nil
}

func buildRecorder(cfg Config, reg prometheus.Registerer, logger *slog.Logger) (*metricsapp.Recorder, error) {
	counter, err := metricsprom.NewSink(reg)
	if err != nil {
		return nil, fmt.Errorf("register event counters: %w", err)
	}
	sinks := []metricsports.Sink{counter}
	if cfg.MetricsBeacon {
		client, err := shelter.NewClient(cfg.APIURL, shelter.WithTimeout(cfg.RequestTimeout), shelter.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("beacon client: %w", err)
		}
		sinks = append(sinks, metricsbeacon.NewSink(client))
	}
	return metricsapp.NewRecorder(sinks, metricsapp.WithLogger(logger)), nil
}

// Backends are the physical stores behind every client's gateway.
type Backends struct {
	Session storageports.Backend
	Durable storageports.Backend
	closers []func()
}

// Close releases database handles.
func (b *Backends) Close() {
	for _, c := range b.closers {
		c()
	}
}

// OpenBackends builds the storage selected by cfg.Storage. Tab-scoped values live in memory except
// with postgres, where they are shared across portal replicas and expire after cfg.SessionTTL.
func OpenBackends(ctx context.Context, cfg Config, fsys afero.Fs, logger *slog.Logger) (*Backends, error) {
	switch cfg.Storage {
	case StorageMemory, "":
		return &Backends{Session: memory.NewBackend(), Durable: memory.NewBackend()}, nil
	case StorageFile:
		durable, err := file.NewBackend(fsys, cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return &Backends{Session: memory.NewBackend(), Durable: durable}, nil
	case StorageSQLite:
		durable, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return &Backends{
			Session: memory.NewBackend(),
			Durable: durable,
			closers: []func(){func() { _ = durable.Close() }},
		}, nil
	case StoragePostgres:
		db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Backends{
			Session: storagepostgres.NewBackend(db, cfg.SessionTTL),
			Durable: storagepostgres.NewBackend(db, 0),
			closers: []func(){cleanup},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
