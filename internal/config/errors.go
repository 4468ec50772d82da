package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoServer is returned when no service URL is configured.
	ErrNoServer = errors.New("no server specified: set --server or ZONECHECK_SERVER")

	// ErrInvalidServerURL is returned when the service URL is not an absolute http(s) URL.
	ErrInvalidServerURL = errors.New("invalid server URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the request timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be non-negative")

	// ErrInvalidLocateTimeout is returned when the position timeout is not positive.
	ErrInvalidLocateTimeout = errors.New("invalid locate timeout: must be positive")

	// ErrInvalidMaxPositionAge is returned when the maximum position age is negative.
	ErrInvalidMaxPositionAge = errors.New("invalid max position age: must be non-negative")

	// ErrInvalidPollInterval is returned when the watch poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidProxyAddress is returned when the proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
