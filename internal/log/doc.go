// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler masks personal data before it reaches the output:
//   - Alert email addresses, wherever they appear in a string value
//   - Home addresses and zipcodes logged under address-like keys
//   - Security codes returned with emergency alerts
//   - Authentication headers and bearer tokens
//
// Even in verbose mode these values stay masked, so a log file can be
// attached to a bug report without leaking where the user lives.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("configuration saved",
//	    "alert_email", cfg.AlertEmail, // ***REDACTED***
//	    "addresses", len(cfg.HomeAddresses),
//	)
//	slog.SetDefault(logger)
package log
