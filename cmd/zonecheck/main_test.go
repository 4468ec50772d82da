package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// executeCmd runs the root command with args and returns stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// fakeService imitates the risk-assessment service.
type fakeService struct {
	mu            sync.Mutex
	checkRequests []map[string]any
	zone          string
}

func (f *fakeService) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy", "message": "Security analysis service", "version": "1.0.0",
		})
	})
	mux.HandleFunc("/api/configure-user", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			HomeAddresses []string `json:"homeAddresses"`
			Email         string   `json:"2faEmail"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		if body.Email != "" && !strings.Contains(body.Email, "@") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Configuration saved"})
	})
	mux.HandleFunc("/api/check-security", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		f.mu.Lock()
		f.checkRequests = append(f.checkRequests, body)
		zone := f.zone
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"zone":        zone,
			"score":       3,
			"riskFactors": []string{"Unsafe WiFi network detected", "4 cyber threats reported nearby"},
			"location":    map[string]any{"city": "cambridge", "zipcode": "02139"},
			"emailSent":   zone == "Red",
		})
	})
	return mux
}

func (f *fakeService) setZone(zone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zone = zone
}

func (f *fakeService) requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.checkRequests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv is an isolated settings file, database directory and service.
type testEnv struct {
	svc        *fakeService
	server     *httptest.Server
	dbDir      string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	svc := &fakeService{zone: "Red"}
	server := httptest.NewServer(svc.handler(t))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(configPath, []byte("requestTimeout: 5s\n"), 0600); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		svc:        svc,
		server:     server,
		dbDir:      filepath.Join(dir, "data"),
		configPath: configPath,
	}
}

// run executes a command against the environment.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := []string{"--config", e.configPath, "--server", e.server.URL, "--db-dir", e.dbDir}
	return executeCmd(t, append(args, base...)...)
}
