package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/configstore"
	"github.com/nao1215/zonecheck/internal/model"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change home addresses and the 2FA alert email",
		Long: `Config manages the user configuration required for security checks:
one or more home addresses and the email address that receives 2FA alerts.

Every change is validated by the risk-assessment service before it is stored.
If the service rejects the change or cannot be reached, nothing is stored.

Examples:
  zonecheck config show
  zonecheck config add-address --number 77 --street "Massachusetts Ave" --city Cambridge --state MA --zip 02139
  zonecheck config remove-address 2
  zonecheck config set-email me@example.com`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigAddAddressCmd())
	cmd.AddCommand(newConfigRemoveAddressCmd())
	cmd.AddCommand(newConfigSetEmailCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(_ context.Context, _ *configstore.Store, cfg model.UserConfig) error {
				printUserConfig(cmd.OutOrStdout(), cfg)
				return nil
			})
		},
	}
}

func newConfigAddAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-address",
		Short: "Add a home address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := make(map[string]string, 5)
			for _, name := range []string{"number", "street", "city", "state", "zip"} {
				v, err := cmd.Flags().GetString(name)
				if err != nil {
					return err
				}
				fields[name] = v
			}

			addr, err := model.NewAddress(fields["number"], fields["street"], fields["city"], fields["state"], fields["zip"])
			if err != nil {
				return err
			}
			return updateConfig(cmd, func(cfg model.UserConfig) (model.UserConfig, error) {
				return cfg.WithAddress(addr)
			})
		},
	}

	cmd.Flags().String("number", "", "Street number")
	cmd.Flags().String("street", "", "Street name")
	cmd.Flags().String("city", "", "City")
	cmd.Flags().String("state", "", "State")
	cmd.Flags().String("zip", "", "Zipcode")
	for _, name := range []string{"number", "street", "city", "state", "zip"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newConfigRemoveAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-address <index>",
		Short: "Remove a home address by its index in 'config show'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			return updateConfig(cmd, func(cfg model.UserConfig) (model.UserConfig, error) {
				return cfg.WithoutAddress(index - 1)
			})
		},
	}
}

func newConfigSetEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-email <email>",
		Short: "Set the email address that receives 2FA alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, func(cfg model.UserConfig) (model.UserConfig, error) {
				return cfg.WithEmail(args[0]), nil
			})
		},
	}
}

// withStore opens the store, loads the configuration and calls fn.
func withStore(cmd *cobra.Command, fn func(context.Context, *configstore.Store, model.UserConfig) error) error {
	a, err := newApp(cmd)
	if err != nil {
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

	ctx, cancel := signalContext(cmd)
	defer cancel()

	store := a.newStore(db, svc, nil)
	cfg, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return fn(ctx, store, cfg)
}

// updateConfig applies change to the stored configuration and saves it.
func updateConfig(cmd *cobra.Command, change func(model.UserConfig) (model.UserConfig, error)) error {
	return withStore(cmd, func(ctx context.Context, store *configstore.Store, cfg model.UserConfig) error {
		updated, err := change(cfg)
		if err != nil {
			return err
		}

		saved, err := store.Save(ctx, updated)
		if err != nil {
			if errors.Is(err, model.ErrValidationRejected) || model.IsNetworkError(err) {
				return asUserError(err)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved.")
		printUserConfig(cmd.OutOrStdout(), saved)
		return nil
	})
}

// printUserConfig prints the configuration and whether checks are possible.
func printUserConfig(w io.Writer, cfg model.UserConfig) {
	fmt.Fprintf(w, "Home addresses (%d):\n", len(cfg.HomeAddresses))
	if len(cfg.HomeAddresses) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, addr := range cfg.HomeAddresses {
		fmt.Fprintf(w, "  %d. %s\n", i+1, addr.Display())
	}

	email := cfg.AlertEmail
	if email == "" {
		email = "(not set)"
	}
	fmt.Fprintf(w, "2FA alert email: %s\n", email)

	if configstore.IsComplete(cfg) {
		fmt.Fprintln(w, "Status: ready for security checks")
		return
	}
	fmt.Fprintln(w, "Status: incomplete, still missing:")
	for _, m := range cfg.Missing() {
		fmt.Fprintf(w, "  - %s\n", m)
	}
}
