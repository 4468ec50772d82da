package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/client"
	"github.com/nao1215/zonecheck/internal/config"
	"github.com/nao1215/zonecheck/internal/configstore"
	"github.com/nao1215/zonecheck/internal/database"
	"github.com/nao1215/zonecheck/internal/log"
	"github.com/nao1215/zonecheck/internal/observability"
	"github.com/nao1215/zonecheck/internal/orchestrator"
)

// app holds what every command needs: the resolved configuration and a logger.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// newApp resolves the configuration for cmd and sets up logging.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration resolved",
		"server", cfg.ServerURL,
		"proxy", cfg.ProxyAddress != "",
		"db_dir", cfg.DBDir,
		"settings_file", config.FindConfigFile(cfg.ConfigFilePath),
	)
	return &app{cfg: cfg, logger: logger}, nil
}

// buildConfig layers CLI flags over the settings file and environment.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}

	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if flags.Changed("server") {
		if cfg.ServerURL, err = flags.GetString("server"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.RequestTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// newClient creates the service client.
func (a *app) newClient() (*client.Client, error) {
	opts := []client.Option{
		client.WithTimeout(a.cfg.RequestTimeout),
		client.WithUserAgent(a.cfg.UserAgent),
		client.WithLogger(a.logger),
	}
	if a.cfg.ProxyAddress != "" {
		opts = append(opts, client.WithSOCKS5Proxy(a.cfg.ProxyAddress))
	}
	c, err := client.NewClient(a.cfg.ServerURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create service client: %w", err)
	}
	return c, nil
}

// newHTTPClient creates a plain HTTP client sharing the proxy settings,
// for requests that do not go to the service.
func (a *app) newHTTPClient() (*http.Client, error) {
	rt, err := client.NewTransport(a.cfg.ProxyAddress, a.cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: rt, Timeout: a.cfg.LocateTimeout}, nil
}

// openDB opens the state database in the configured directory.
func (a *app) openDB() (*database.StateDB, error) {
	db, err := database.Open(a.cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// newStore creates the configuration store backed by db, validating saves
// against the service.
func (a *app) newStore(db *database.StateDB, validator configstore.Validator, metrics *observability.Metrics) *configstore.Store {
	return configstore.New(db, validator,
		configstore.WithLogger(a.logger),
		configstore.WithMetrics(metrics),
	)
}

// userError renders a domain error as the message shown to the user while
// keeping the original error for errors.Is.
type userError struct {
	err error
}

func (e *userError) Error() string {
	return orchestrator.UserMessage(e.err)
}

func (e *userError) Unwrap() error {
	return e.err
}

// asUserError wraps err for display unless it is nil or already wrapped.
func asUserError(err error) error {
	if err == nil {
		return nil
	}
	var ue *userError
	if errors.As(err, &ue) {
		return err
	}
	return &userError{err: err}
}
