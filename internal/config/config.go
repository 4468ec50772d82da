package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultServerURL is where the risk-assessment service listens in a
	// local development setup.
	DefaultServerURL = "http://localhost:5000"

	// DefaultRequestTimeout bounds every request to the service.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultLocateTimeout bounds a single position request.
	DefaultLocateTimeout = 10 * time.Second

	// DefaultMaxPositionAge is how old a cached position may be before a
	// new one is requested.
	DefaultMaxPositionAge = 60 * time.Second

	// DefaultPollInterval is how often watch re-reads the stored
	// configuration.
	DefaultPollInterval = 2 * time.Second

	// DefaultGeoIPURL is the IP geolocation endpoint used with --geoip.
	DefaultGeoIPURL = "http://ip-api.com/json"

	// DefaultUserAgent identifies zonecheck in HTTP requests.
	DefaultUserAgent = "zonecheck/1.0 (+https://github.com/nao1215/zonecheck)"

	// AppName is the application name used for XDG directory paths.
	AppName = "zonecheck"
)

// Config holds all runtime options. It is populated from defaults, the
// settings file, the environment and CLI flags, in that order.
type Config struct {
	// ServerURL is the base URL of the risk-assessment service.
	ServerURL string

	// RequestTimeout bounds every request to the service. Zero disables it.
	RequestTimeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form, e.g.
	// a local Tor daemon at 127.0.0.1:9050.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// GeoIPURL is the IP geolocation endpoint.
	GeoIPURL string

	// LocateTimeout bounds a single position request.
	LocateTimeout time.Duration

	// MaxPositionAge is the maximum age of a reused position.
	MaxPositionAge time.Duration

	// PollInterval is the watch re-poll period.
	PollInterval time.Duration

	// DBDir holds zonecheck.db. Defaults to the XDG data directory.
	DBDir string

	// ConfigFilePath is the path to the settings file. When empty,
	// .zonecheck is searched in the current and home directories.
	ConfigFilePath string

	// EnvFile is an optional .env file loaded before the environment is read.
	EnvFile string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// MetricsAddr serves Prometheus metrics in watch mode when set.
	MetricsAddr string

	// MetricsFile receives the metrics of a check in the Prometheus text
	// format when set, for node_exporter's textfile collector.
	MetricsFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:      DefaultServerURL,
		RequestTimeout: DefaultRequestTimeout,
		UserAgent:      DefaultUserAgent,
		GeoIPURL:       DefaultGeoIPURL,
		LocateTimeout:  DefaultLocateTimeout,
		MaxPositionAge: DefaultMaxPositionAge,
		PollInterval:   DefaultPollInterval,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for zonecheck.
// On Linux: ~/.local/share/zonecheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for zonecheck.
// On Linux: ~/.config/zonecheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrNoServer
	}
	if !validHTTPURL(c.ServerURL) {
		return ErrInvalidServerURL
	}

	if c.RequestTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.LocateTimeout <= 0 {
		return ErrInvalidLocateTimeout
	}
	if c.MaxPositionAge < 0 {
		return ErrInvalidMaxPositionAge
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if c.ProxyAddress != "" {
		host, port, err := net.SplitHostPort(c.ProxyAddress)
		if err != nil || host == "" || port == "" {
			return ErrInvalidProxyAddress
		}
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
