package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/config"
)

//go:embed templates/zonecheck.yaml
var configTemplate embed.FS

// configFileName is the default settings file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new zonecheck settings file",
		Long: `Initialize creates a new .zonecheck settings file in the current directory.

The generated file documents every setting: the service URL, an optional
SOCKS5 proxy, request and position timeouts, and the watch poll interval.

Home addresses and the alert email are not stored in this file. Use
'zonecheck config' for them so that the service can validate them.

Examples:
  # Create .zonecheck in current directory
  zonecheck init

  # Create the settings file at a specific path
  zonecheck init -o ~/.config/zonecheck/config.yaml

  # Force overwrite existing file
  zonecheck init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the settings file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing settings file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("settings file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/zonecheck.yaml")
	if err != nil {
		return fmt.Errorf("failed to read settings template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created settings file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  - Set 'server' to the URL of your risk-assessment service")
	fmt.Fprintln(out, "  - Add a home address with 'zonecheck config add-address'")
	fmt.Fprintln(out, "  - Set your 2FA alert email with 'zonecheck config set-email'")

	return nil
}
