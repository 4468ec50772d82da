package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/zonecheck/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != configFileName {
			t.Errorf("expected default %q, got %q", configFileName, flag.DefValue)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable settings file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", ".zonecheck")
		out, err := executeCmd(t, "init", "-o", path)
		if err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if !strings.Contains(out, "Created settings file") {
			t.Errorf("unexpected output: %s", out)
		}

		cf, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("template does not parse: %v", err)
		}
		cfg := config.NewConfig()
		cf.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			t.Errorf("template settings are invalid: %v", err)
		}
		if cfg.ServerURL != config.DefaultServerURL {
			t.Errorf("ServerURL = %q", cfg.ServerURL)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0o077 != 0 && os.PathSeparator == '/' {
			t.Errorf("expected owner-only permissions, got %v", info.Mode().Perm())
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".zonecheck")
		if err := os.WriteFile(path, []byte("server: http://example.com\n"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := executeCmd(t, "init", "-o", path); err == nil {
			t.Error("expected an error for an existing file")
		}
		if _, err := executeCmd(t, "init", "-o", path, "-f"); err != nil {
			t.Errorf("expected -f to overwrite, got %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "pollInterval") {
			t.Error("expected the template content after overwrite")
		}
	})
}
