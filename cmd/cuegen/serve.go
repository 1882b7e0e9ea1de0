package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/luxstudio/cuegen/fixturelib"
	"github.com/luxstudio/cuegen/service"
)

func serveCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the NATS request/reply service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus metrics listen address (empty disables)")
	return cmd
}

func serve(metricsAddr string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if !a.cfg.NATS.Enabled {
		return fmt.Errorf("serve requires nats.enabled in configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.FixtureLibrary.Path != "" {
		if err := startFixtureLibrary(ctx, a); err != nil {
			return err
		}
	}

	conn, err := nats.Connect(a.cfg.NATS.URL,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer conn.Drain()

	srv := service.NewServer(conn, service.Deps{
		Scenes:    a.scenes,
		Sequences: a.sequences,
		Analyzer:  a.analyzer,
		Bulk:      a.bulk,
		Backend:   a.backend,
		Logger:    a.logger,
	})
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	if metricsAddr != "" {
		go serveMetrics(a, metricsAddr)
	}

	a.logger.Info("Cuegen ready",
		"version", Version,
		"nats_url", a.cfg.NATS.URL,
		"backend_url", a.cfg.Backend.URL)

	<-ctx.Done()
	a.logger.Info("Shutting down")
	return nil
}

func startFixtureLibrary(ctx context.Context, a *app) error {
	lib, err := fixturelib.Open(a.cfg.FixtureLibrary.Path, a.logger)
	if err != nil {
		return fmt.Errorf("open fixture library: %w", err)
	}

	if created, err := lib.SyncTo(ctx, a.backend); err != nil {
		a.logger.Warn("Fixture library sync failed", "error", err)
	} else if created > 0 {
		a.logger.Info("Fixture definitions pushed to backend", "created", created)
	}

	if a.cfg.FixtureLibrary.Watch {
		watcher, err := fixturelib.NewWatcher(lib, a.logger,
			fixturelib.WithDebounce(a.cfg.FixtureLibrary.Debounce))
		if err != nil {
			return fmt.Errorf("create fixture watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start fixture watcher: %w", err)
		}

		// Re-sync after every reload so new profiles reach the backend.
		go func() {
			defer watcher.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-watcher.Reloads():
					if !ok {
						return
					}
					if _, err := lib.SyncTo(ctx, a.backend); err != nil {
						a.logger.Warn("Fixture library re-sync failed", "error", err)
					}
				}
			}
		}()
	}
	return nil
}

func serveMetrics(a *app, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.logger.Info("Metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		a.logger.Error("Metrics server stopped", "error", err)
	}
}
