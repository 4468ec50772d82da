package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPingCmd creates the ping command.
func NewPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the risk-assessment service is reachable",
		Long: `Ping queries the health endpoint of the risk-assessment service and prints
its status and version. Use it to verify --server and --proxy settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			h, err := svc.Health(ctx)
			if err != nil {
				return asUserError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", svc.BaseURL(), h.Status)
			if h.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  message: %s\n", h.Message)
			}
			if h.Version != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  version: %s\n", h.Version)
			}
			return nil
		},
	}
}
