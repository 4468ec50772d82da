package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/observability"
)

// Validator submits a configuration to the remote service for validation.
// client.Client implements it.
type Validator interface {
	ConfigureUser(ctx context.Context, cfg model.UserConfig) error
}

// Store owns the user configuration. Save is the only write path.
type Store struct {
	storage   Storage
	validator Validator
	logger    *slog.Logger
	metrics   *observability.Metrics

	// saveMu serializes Save.
	saveMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]chan model.UserConfig
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings about malformed storage.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records save outcomes and the configuration gate.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a Store on top of storage. validator is consulted on every Save.
func New(storage Storage, validator Validator, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		validator: validator,
		logger:    slog.Default(),
		subs:      make(map[int]chan model.UserConfig),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the configuration from storage.
//
// Missing entries default to empty values. An entry that is not valid JSON
// is treated as missing, and stored addresses that fail to parse are
// skipped; both cases are logged at warn level. Only storage I/O errors are
// returned.
func (s *Store) Load(ctx context.Context) (model.UserConfig, error) {
	cfg := model.UserConfig{HomeAddresses: []model.Address{}}

	raw, ok, err := s.storage.Get(ctx, KeyHomeAddresses)
	if err != nil {
		return model.UserConfig{}, fmt.Errorf("failed to load home addresses: %w", err)
	}
	if ok {
		cfg.HomeAddresses = s.decodeAddresses(raw)
	}

	email, ok, err := s.storage.Get(ctx, KeyAlertEmail)
	if err != nil {
		return model.UserConfig{}, fmt.Errorf("failed to load alert email: %w", err)
	}
	if ok {
		cfg.AlertEmail = email
	}

	s.metrics.SetConfigComplete(cfg.IsComplete())
	return cfg, nil
}

func (s *Store) decodeAddresses(raw string) []model.Address {
	addresses := []model.Address{}

	var encoded []string
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil {
		s.logger.Warn("ignoring malformed stored addresses",
			"key", KeyHomeAddresses,
			"error", err)
		return addresses
	}

	for i, e := range encoded {
		addr, err := model.ParseAddress(e)
		if err != nil {
			s.logger.Warn("skipping invalid stored address",
				"index", i,
				"error", err)
			continue
		}
		addresses = append(addresses, addr)
	}
	return addresses
}

// IsComplete reports whether cfg allows a security check.
func IsComplete(cfg model.UserConfig) bool {
	return cfg.IsComplete()
}

// Save validates cfg with the remote service and persists it on success.
//
// On failure storage is left untouched and the error wraps
// model.ErrValidationRejected or model.ErrNetworkUnavailable (both
// retryable). On success every subscriber is notified and the saved
// configuration is returned; a Load issued after Save returns sees it.
func (s *Store) Save(ctx context.Context, cfg model.UserConfig) (model.UserConfig, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	for i, addr := range cfg.HomeAddresses {
		if err := addr.Validate(); err != nil {
			s.metrics.RecordConfigSave(observability.OutcomeRejected)
			return model.UserConfig{}, fmt.Errorf("home address %d: %w", i, err)
		}
	}

	if err := s.validator.ConfigureUser(ctx, cfg); err != nil {
		s.metrics.RecordConfigSave(saveOutcome(err))
		return model.UserConfig{}, fmt.Errorf("configuration not saved: %w", err)
	}

	addresses, err := json.Marshal(cfg.EncodedAddresses())
	if err != nil {
		return model.UserConfig{}, fmt.Errorf("failed to encode addresses: %w", err)
	}
	entries := map[string]string{
		KeyHomeAddresses: string(addresses),
		KeyAlertEmail:    cfg.AlertEmail,
	}
	if err := s.storage.Put(ctx, entries); err != nil {
		s.metrics.RecordConfigSave(observability.OutcomeStorage)
		return model.UserConfig{}, fmt.Errorf("failed to persist configuration: %w", err)
	}

	saved := cfg.Clone()
	s.metrics.RecordConfigSave(observability.OutcomeSaved)
	s.metrics.SetConfigComplete(saved.IsComplete())
	s.logger.Debug("configuration saved",
		"addresses", len(saved.HomeAddresses),
		"complete", saved.IsComplete())
	s.publish(saved)

	return saved, nil
}

func saveOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrValidationRejected):
		return observability.OutcomeRejected
	case model.IsNetworkError(err):
		return observability.OutcomeNetwork
	default:
		return observability.OutcomeUnexpected
	}
}

// Subscribe registers for configuration-changed notifications.
//
// Each subscriber holds at most one pending notification: when a new
// configuration is published before the previous one was received, the
// older value is replaced. Publishing never blocks. The returned cancel
// function unregisters the subscriber and closes the channel.
func (s *Store) Subscribe() (<-chan model.UserConfig, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan model.UserConfig, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(cfg model.UserConfig) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- cfg.Clone():
			continue
		default:
		}
		// Replace the stale pending value.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg.Clone():
		default:
		}
	}
}
