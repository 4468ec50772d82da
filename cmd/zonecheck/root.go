package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/config"
)

// NewRootCmd creates the root command for zonecheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zonecheck",
		Short: "Location-based security zone checks",
		Long: `zonecheck sends your position and home addresses to a risk-assessment
service and shows whether you are in a secure (Green), caution (Yellow) or
danger (Red) zone, why, and what to do about it.

A check needs at least one home address and a 2FA alert email. Configure
them with 'zonecheck config' before running 'zonecheck check'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Settings file path (default: .zonecheck in current or home directory)")
	cmd.PersistentFlags().String("env-file", "",
		"Load ZONECHECK_* variables from this file (default: .env if present)")
	cmd.PersistentFlags().StringP("server", "s", "",
		"Risk-assessment service URL (default: "+config.DefaultServerURL+")")
	cmd.PersistentFlags().StringP("proxy", "x", "",
		"SOCKS5 proxy for outbound requests, e.g. 127.0.0.1:9050")
	cmd.PersistentFlags().Duration("timeout", config.DefaultRequestTimeout,
		"Timeout for each request to the service (0 disables it)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the state database (default: XDG data directory)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewPingCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
