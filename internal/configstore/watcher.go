package configstore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/sha3"

	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/observability"
)

// DefaultPollInterval is the default re-poll interval of a Watcher.
const DefaultPollInterval = 2 * time.Second

// ChangeFunc is invoked by a Watcher with the current configuration and
// its completeness whenever the configuration changes.
type ChangeFunc func(cfg model.UserConfig, complete bool)

// Watcher keeps an observer current with the stored configuration.
//
// It reacts to Store notifications and also re-polls storage every
// interval, so changes are observed even when a notification is missed.
// The callback only fires when the configuration actually changed.
type Watcher struct {
	store    *Store
	onChange ChangeFunc
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	// lastFingerprint is only accessed by the Run goroutine.
	lastFingerprint string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval sets the re-poll interval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithClock sets the clock driving the poll ticker.
func WithClock(c clockwork.Clock) WatcherOption {
	return func(w *Watcher) {
		w.clock = c
	}
}

// WithWatcherLogger sets the logger of the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithWatcherMetrics counts observed configuration changes.
func WithWatcherMetrics(m *observability.Metrics) WatcherOption {
	return func(w *Watcher) {
		w.metrics = m
	}
}

// NewWatcher creates a Watcher on store that calls onChange.
func NewWatcher(store *Store, onChange ChangeFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    store,
		onChange: onChange,
		interval: DefaultPollInterval,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. The callback fires once at start with
// the stored configuration, then on every change. Storage errors during a
// poll are logged and retried at the next tick; they never stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	updates, cancel := w.store.Subscribe()
	defer cancel()

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-updates:
			if !ok {
				return nil
			}
			w.reconcile(cfg)
		case <-ticker.Chan():
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	cfg, err := w.store.Load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("failed to poll configuration", "error", err)
		}
		return
	}
	w.reconcile(cfg)
}

func (w *Watcher) reconcile(cfg model.UserConfig) {
	fp := Fingerprint(cfg)
	if fp == w.lastFingerprint {
		return
	}
	first := w.lastFingerprint == ""
	w.lastFingerprint = fp
	if !first {
		w.metrics.RecordConfigChange()
	}
	w.logger.Debug("configuration changed", "fingerprint", fp[:12], "complete", cfg.IsComplete())
	w.onChange(cfg, cfg.IsComplete())
}

// Fingerprint returns a SHA3-256 digest of the canonical encoding of cfg.
// Two configurations have the same fingerprint iff they are Equal.
func Fingerprint(cfg model.UserConfig) string {
	canonical, _ := json.Marshal(struct { //nolint:errchkjson // strings only
		Addresses []string `json:"a"`
		Email     string   `json:"e"`
	}{cfg.EncodedAddresses(), cfg.AlertEmail})
	sum := sha3.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
