package log

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests that sensitive keys are sanitized.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "alert_email key is sanitized",
			key:      "alert_email",
			value:    "someone",
			wantMask: true,
		},
		{
			name:     "Email key (uppercase) is sanitized",
			key:      "Email",
			value:    "someone",
			wantMask: true,
		},
		{
			name:     "home address key is sanitized",
			key:      "home_address",
			value:    "123 Main St, Cambridge",
			wantMask: true,
		},
		{
			name:     "zipcode key is sanitized",
			key:      "zipcode",
			value:    "02139",
			wantMask: true,
		},
		{
			name:     "security code key is sanitized",
			key:      "security_code",
			value:    "ABC123",
			wantMask: true,
		},
		{
			name:     "authorization key is sanitized",
			key:      "authorization",
			value:    "token123",
			wantMask: true,
		},
		{
			name:     "server key is NOT sanitized",
			key:      "server",
			value:    "http://localhost:5000",
			wantMask: false,
		},
		{
			name:     "zone key is NOT sanitized",
			key:      "zone",
			value:    "Yellow",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()

			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, but found in output: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected mask value %q in output, but not found: %s", MaskValue, output)
				}
			} else if !strings.Contains(output, tt.value) {
				t.Errorf("expected value %q to be present in output, but not found: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesSensitiveValues tests that values are masked regardless of key.
func TestSecureHandler_SanitizesSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		secret string
	}{
		{"embedded email", "sending alert to someone@example.com now", "someone@example.com"},
		{"encoded address", "123|Main St|Cambridge|MA|02139", "Main St"},
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"error value", fmt.Errorf("rejected: %w", errors.New("invalid email x@y.org")), "x@y.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test message", "detail", tt.value)

			if strings.Contains(buf.String(), tt.secret) {
				t.Errorf("expected %q to be masked: %s", tt.secret, buf.String())
			}
		})
	}
}

func TestSecureHandler_MasksMessageAndKeepsCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("saved configuration for a@b.io", "home_addresses", 3)

	output := buf.String()
	if strings.Contains(output, "a@b.io") {
		t.Errorf("message email not masked: %s", output)
	}
	if !strings.Contains(output, "home_addresses=3") {
		t.Errorf("expected address count to be kept: %s", output)
	}
}

func TestSecureHandler_GroupsAndWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("email", "someone@example.com")
	logger.Info("test", slog.Group("config", slog.String("street", "Main St"), slog.String("zone", "Red")))

	output := buf.String()
	for _, secret := range []string{"someone@example.com", "Main St"} {
		if strings.Contains(output, secret) {
			t.Errorf("expected %q to be masked: %s", secret, output)
		}
	}
	if !strings.Contains(output, "config.zone=Red") {
		t.Errorf("expected group attribute to survive: %s", output)
	}
}

func TestNewSecureLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "verbose logs debug", verbose: true, wantDebug: true},
		{name: "quiet suppresses debug", verbose: false, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, tt.verbose)
			logger.Debug("debug line")
			logger.Warn("warn line")

			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Errorf("debug present = %v, expected %v", got, tt.wantDebug)
			}
			if !strings.Contains(buf.String(), "warn line") {
				t.Error("warn line missing")
			}
		})
	}
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, false)
	logger.Warn("alert", "security_code", "XYZ")

	output := buf.String()
	if !strings.HasPrefix(output, "{") || strings.Contains(output, "XYZ") {
		t.Errorf("unexpected JSON output: %s", output)
	}
}

func TestNewSecureHandler_NilUsesDefault(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}
