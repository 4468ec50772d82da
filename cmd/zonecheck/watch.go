package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/zonecheck/internal/configstore"
	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/observability"
)

// shutdownTimeout bounds the graceful shutdown of the metrics server.
const shutdownTimeout = 5 * time.Second

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow configuration changes made by other zonecheck processes",
		Long: `Watch prints the configuration whenever it changes and reports whether it
is complete enough for security checks. Changes saved by this process are
seen immediately; changes saved by another process are picked up within
--interval.

With --metrics-addr, Prometheus metrics are served at /metrics.

Examples:
  zonecheck watch
  zonecheck watch --interval 5s --metrics-addr 127.0.0.1:9120`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	cmd.Flags().DurationP("interval", "i", configstore.DefaultPollInterval,
		"How often the stored configuration is re-read")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address (disabled when empty)")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		if a.cfg.PollInterval, err = cmd.Flags().GetDuration("interval"); err != nil {
			return err
		}
		if err := a.cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}
	if a.cfg.MetricsAddr, err = cmd.Flags().GetString("metrics-addr"); err != nil {
		return err
	}

	svc, err := a.newClient()
	if err != nil {
		return err
	}
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(reg)

	store := a.newStore(db, svc, metrics)
	printer := &changePrinter{w: cmd.OutOrStdout()}
	watcher := configstore.NewWatcher(store, printer.print,
		configstore.WithPollInterval(a.cfg.PollInterval),
		configstore.WithWatcherLogger(a.logger),
		configstore.WithWatcherMetrics(metrics),
	)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})

	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			a.logger.Debug("serving metrics", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// metricsHandler serves the registry at /metrics.
func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// changePrinter prints configuration changes reported by the watcher.
type changePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *changePrinter) print(cfg model.UserConfig, complete bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := "incomplete"
	if complete {
		status = "complete"
	}
	fmt.Fprintf(p.w, "configuration %s: %d home address(es), alert email set: %t\n",
		status, len(cfg.HomeAddresses), cfg.AlertEmail != "")
}
