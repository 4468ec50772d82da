package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/config"
	"github.com/nao1215/zonecheck/internal/locate"
	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/observability"
	"github.com/nao1215/zonecheck/internal/orchestrator"
	"github.com/nao1215/zonecheck/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a security check for the current location",
		Long: `Check obtains your position, sends it together with your home addresses
to the risk-assessment service and reports the resulting zone.

The position comes from --lat/--lon, or from IP geolocation with --geoip,
and is obtained fresh for every run.
Every successful check is stored in the history unless --no-save is given.
With --metrics-file, the check's Prometheus metrics are written to that file
for node_exporter's textfile collector.

Examples:
  # Check fixed coordinates
  zonecheck check --lat 42.3601 --lon -71.0942

  # Use IP geolocation through a local Tor proxy
  zonecheck check --geoip -x 127.0.0.1:9050

  # Write a Markdown report
  zonecheck check --lat 42.3601 --lon -71.0942 -m -o report.md

  # Export metrics after each scheduled run
  zonecheck check --geoip --metrics-file /var/lib/node_exporter/zonecheck.prom`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().Float64("lat", 0, "Latitude in degrees")
	cmd.Flags().Float64("lon", 0, "Longitude in degrees")
	cmd.Flags().BoolP("geoip", "g", false, "Locate via IP geolocation")
	cmd.Flags().Duration("locate-timeout", config.DefaultLocateTimeout, "Timeout for obtaining a position")
	cmd.Flags().Bool("no-save", false, "Do not store the result in the history")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics of the check to this file")
	addReportFlags(cmd)

	return cmd
}

// addReportFlags adds the output format flags shared by check and history.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// applyReportFlags copies the output format flags into cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return cfg.Validate()
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, a.cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if a.cfg.LocateTimeout, err = cmd.Flags().GetDuration("locate-timeout"); err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-file") {
		if a.cfg.MetricsFile, err = cmd.Flags().GetString("metrics-file"); err != nil {
			return err
		}
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}

	locator, err := a.newLocator(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

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
	metrics := observability.NewMetrics(reg)

	orch := orchestrator.New(locator, a.newStore(db, svc, metrics), svc,
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMetrics(metrics),
		orchestrator.WithLocateOptions(locate.Options{
			HighAccuracy: true,
			Timeout:      a.cfg.LocateTimeout,
			MaximumAge:   a.cfg.MaxPositionAge,
		}),
		orchestrator.WithStateListener(func(s orchestrator.Snapshot) {
			a.logger.Debug("security check state", "state", s.State.String())
		}),
	)

	snap, _ := orch.RunCheck(ctx)
	if err := writeMetricsFile(a.cfg.MetricsFile, reg); err != nil {
		a.logger.Warn("failed to write metrics file", "path", a.cfg.MetricsFile, "error", err)
	}
	if snap.State != orchestrator.StateSucceeded {
		return asUserError(snap.Err)
	}

	if !noSave {
		if err := db.SaveCheck(ctx, snap.Result); err != nil {
			a.logger.Warn("failed to save check to history", "error", err)
		}
	}
	return writeResult(a.cfg, cmd.OutOrStdout(), snap.Result)
}

// writeMetricsFile writes the registry to path in the Prometheus text format.
// An empty path does nothing.
func writeMetricsFile(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	return prometheus.WriteToTextfile(path, reg)
}

// newLocator selects the position source from the flags.
func (a *app) newLocator(cmd *cobra.Command) (locate.Locator, error) {
	geoip, err := cmd.Flags().GetBool("geoip")
	if err != nil {
		return nil, err
	}

	var inner locate.Locator
	switch {
	case geoip:
		hc, err := a.newHTTPClient()
		if err != nil {
			return nil, err
		}
		inner = locate.NewGeoIPLocator(a.cfg.GeoIPURL,
			locate.WithHTTPClient(hc),
			locate.WithLogger(a.logger),
		)
	case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
		lat, err := cmd.Flags().GetFloat64("lat")
		if err != nil {
			return nil, err
		}
		lon, err := cmd.Flags().GetFloat64("lon")
		if err != nil {
			return nil, err
		}
		inner = locate.NewStaticLocator(lat, lon, nil)
	case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"):
		return nil, fmt.Errorf("both --lat and --lon are required")
	default:
		// Reports model.ErrLocationUnsupported when no source was chosen.
		inner = &locate.StaticLocator{}
	}
	return locate.NewCachingLocator(inner, nil), nil
}

// openOutput returns the report destination and a function closing it.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain the user's location, so only the owner may read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter selects the writer for the configured format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// writeResult renders result in the configured format.
func writeResult(cfg *config.Config, stdout io.Writer, result *model.CheckResult) (err error) {
	out, closeOut, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = newReportWriter(cfg, out).Write(result)
	return err
}
