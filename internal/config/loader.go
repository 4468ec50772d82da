package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default settings file name.
const DefaultConfigFile = ".zonecheck"

// Environment variables that override the settings file.
const (
	EnvServer         = "ZONECHECK_SERVER"
	EnvProxy          = "ZONECHECK_PROXY"
	EnvRequestTimeout = "ZONECHECK_REQUEST_TIMEOUT"
	EnvDBDir          = "ZONECHECK_DB_DIR"
)

// ErrConfigNotFound is returned when the settings file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .zonecheck settings file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	Server         string        `yaml:"server,omitempty"`
	Proxy          string        `yaml:"proxy,omitempty"`
	UserAgent      string        `yaml:"userAgent,omitempty"`
	GeoIPURL       string        `yaml:"geoipURL,omitempty"`
	DBDir          string        `yaml:"dbDir,omitempty"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty"`
	LocateTimeout  time.Duration `yaml:"locateTimeout,omitempty"`
	MaxPositionAge time.Duration `yaml:"maxPositionAge,omitempty"`
	PollInterval   time.Duration `yaml:"pollInterval,omitempty"`
	MetricsFile    string        `yaml:"metricsFile,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies the non-zero settings of the file into c.
func (cf *File) Apply(c *Config) {
	setString(&c.ServerURL, cf.Server)
	setString(&c.ProxyAddress, cf.Proxy)
	setString(&c.UserAgent, cf.UserAgent)
	setString(&c.GeoIPURL, cf.GeoIPURL)
	setString(&c.DBDir, cf.DBDir)
	setString(&c.MetricsFile, cf.MetricsFile)
	setDuration(&c.RequestTimeout, cf.RequestTimeout)
	setDuration(&c.LocateTimeout, cf.LocateTimeout)
	setDuration(&c.MaxPositionAge, cf.MaxPositionAge)
	setDuration(&c.PollInterval, cf.PollInterval)
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .zonecheck in the current directory
// 3. Look for .zonecheck in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadEnvFile loads variables from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error unless the path was given explicitly.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with ZONECHECK_* variables found by lookup,
// typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServer); ok {
		setString(&c.ServerURL, strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvProxy); ok {
		setString(&c.ProxyAddress, strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvDBDir); ok {
		setString(&c.DBDir, strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvRequestTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Load builds a Config from defaults, the settings file and the
// environment. CLI flags are applied by the caller afterwards.
func Load(configPath, envFile string) (*Config, error) {
	c := NewConfig()
	c.ConfigFilePath = configPath
	c.EnvFile = envFile

	if path := FindConfigFile(configPath); path != "" {
		cf, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cf.Apply(c)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
