// Package config provides the runtime configuration of zonecheck: where the
// risk-assessment service lives, how to reach it, how positions are
// obtained and where state and reports are written.
//
// Values are layered. Defaults from NewConfig are overridden by the
// .zonecheck YAML file, then by ZONECHECK_* environment variables
// (optionally loaded from a .env file), then by command-line flags.
package config
