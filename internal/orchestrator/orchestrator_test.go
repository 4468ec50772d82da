package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nao1215/zonecheck/internal/locate"
	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/observability"
)

type fakeLocator struct {
	calls atomic.Int32
	pos   locate.Position
	err   error
}

func (f *fakeLocator) CurrentPosition(context.Context, locate.Options) (locate.Position, error) {
	f.calls.Add(1)
	return f.pos, f.err
}

type fakeConfig struct {
	cfg model.UserConfig
	err error
}

func (f *fakeConfig) Load(context.Context) (model.UserConfig, error) {
	return f.cfg, f.err
}

type fakeChecker struct {
	calls   atomic.Int32
	resp    *model.RawResponse
	err     error
	block   chan struct{}
	lastReq model.CheckRequest
	mu      sync.Mutex
}

func (f *fakeChecker) CheckSecurity(_ context.Context, req model.CheckRequest) (*model.RawResponse, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

// recorder collects the states reported to a listener.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) listen(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s.State)
}

func (r *recorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func completeConfig() model.UserConfig {
	return model.UserConfig{
		HomeAddresses: []model.Address{{Number: "1", Street: "Main", City: "City", State: "ST", Zipcode: "00000"}},
		AlertEmail:    "x@y.com",
	}
}

func newTestOrchestrator(loc locate.Locator, cfg ConfigSource, chk Checker, rec *recorder) *Orchestrator {
	return New(loc, cfg, chk,
		WithStateListener(rec.listen),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clockwork.NewFakeClock()),
		WithMetrics(observability.NewMetricsForTesting()),
	)
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunCheckSucceeds(t *testing.T) {
	t.Parallel()

	loc := &fakeLocator{pos: locate.Position{Latitude: 42.36, Longitude: -71.09}}
	chk := &fakeChecker{resp: &model.RawResponse{
		Zone:        "Red",
		RiskFactors: []string{"Unsafe WiFi detected", "3 cyber threats reported"},
		Location:    &model.Location{Zipcode: "02139"},
	}}
	rec := &recorder{}
	o := newTestOrchestrator(loc, &fakeConfig{cfg: completeConfig()}, chk, rec)

	snap, started := o.RunCheck(context.Background())
	if !started {
		t.Fatal("expected the check to start")
	}
	if snap.State != StateSucceeded {
		t.Fatalf("State = %v, expected succeeded (err: %v)", snap.State, snap.Err)
	}
	if got := rec.get(); !equalStates(got, []State{StateLocating, StateChecking, StateSucceeded}) {
		t.Errorf("states = %v", got)
	}

	analysis, ok := snap.Analysis()
	if !ok {
		t.Fatal("expected an analysis")
	}
	if len(analysis.Actions) != 2 || analysis.Actions[0] != "Activate 2-Factor Authentication" {
		t.Errorf("Actions = %v", analysis.Actions)
	}
	if snap.Result.Presentation.RadiusMeters != 500 {
		t.Errorf("RadiusMeters = %d, expected 500", snap.Result.Presentation.RadiusMeters)
	}
	if snap.Position == nil || snap.Position.Latitude != 42.36 {
		t.Errorf("Position = %+v", snap.Position)
	}

	chk.mu.Lock()
	req := chk.lastReq
	chk.mu.Unlock()
	if req.Latitude != 42.36 || len(req.HomeAddresses) != 1 || req.HomeAddresses[0] != "1|Main|City|ST|00000" {
		t.Errorf("unexpected request: %+v", req)
	}

	if !o.Reset() {
		t.Fatal("Reset from succeeded should transition")
	}
	if s := o.Snapshot(); s.State != StateIdle || s.Result != nil || s.Err != nil {
		t.Errorf("after Reset: %+v", s)
	}
	if o.Reset() {
		t.Error("Reset from idle should be a no-op")
	}
}

func TestRunCheckLocationFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"permission denied", model.ErrPermissionDenied, model.ErrPermissionDenied},
		{"timeout", model.ErrLocationTimeout, model.ErrLocationTimeout},
		{"unsupported", model.ErrLocationUnsupported, model.ErrLocationUnsupported},
		{"unclassified", errors.New("gps exploded"), model.ErrPositionUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			chk := &fakeChecker{resp: &model.RawResponse{}}
			rec := &recorder{}
			o := newTestOrchestrator(&fakeLocator{err: tc.err}, &fakeConfig{cfg: completeConfig()}, chk, rec)

			snap, _ := o.RunCheck(context.Background())
			if snap.State != StateFailed || !errors.Is(snap.Err, tc.want) {
				t.Errorf("snapshot = %+v, expected failed with %v", snap, tc.want)
			}
			if chk.calls.Load() != 0 {
				t.Error("the service must not be contacted after a location failure")
			}
			if got := rec.get(); !equalStates(got, []State{StateLocating, StateFailed}) {
				t.Errorf("states = %v", got)
			}
		})
	}
}

func TestRunCheckIncompleteConfiguration(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  *fakeConfig
	}{
		{"no email", &fakeConfig{cfg: model.UserConfig{HomeAddresses: completeConfig().HomeAddresses}}},
		{"no addresses", &fakeConfig{cfg: model.UserConfig{AlertEmail: "x@y.com"}}},
		{"storage error", &fakeConfig{err: errors.New("disk on fire")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			chk := &fakeChecker{resp: &model.RawResponse{}}
			rec := &recorder{}
			o := newTestOrchestrator(&fakeLocator{}, tc.cfg, chk, rec)

			snap, _ := o.RunCheck(context.Background())
			if snap.State != StateFailed || !errors.Is(snap.Err, model.ErrConfigIncomplete) {
				t.Errorf("snapshot = %+v, expected failed with ErrConfigIncomplete", snap)
			}
			if chk.calls.Load() != 0 {
				t.Error("no network request expected for an incomplete configuration")
			}
			for _, s := range rec.get() {
				if s == StateChecking {
					t.Error("must not enter checking with an incomplete configuration")
				}
			}
		})
	}
}

func TestRunCheckServiceFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		resp *model.RawResponse
		want error
	}{
		{"http error", model.NewHTTPError(400, "bad coordinates"), nil, nil},
		{"network", fmt.Errorf("%w: refused", model.ErrNetworkUnavailable), nil, model.ErrNetworkUnavailable},
		{"malformed", fmt.Errorf("%w: eof", model.ErrMalformedResponse), nil, model.ErrMalformedResponse},
		{"nil response", nil, nil, model.ErrMalformedResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			o := newTestOrchestrator(&fakeLocator{}, &fakeConfig{cfg: completeConfig()}, &fakeChecker{err: tc.err, resp: tc.resp}, rec)

			snap, _ := o.RunCheck(context.Background())
			if snap.State != StateFailed {
				t.Fatalf("State = %v, expected failed", snap.State)
			}
			if tc.want != nil && !errors.Is(snap.Err, tc.want) {
				t.Errorf("Err = %v, expected %v", snap.Err, tc.want)
			}
			if tc.want == nil {
				var httpErr *model.HTTPError
				if !errors.As(snap.Err, &httpErr) || httpErr.Error() != "bad coordinates" {
					t.Errorf("Err = %v, expected HTTP error", snap.Err)
				}
			}
			if got := rec.get(); !equalStates(got, []State{StateLocating, StateChecking, StateFailed}) {
				t.Errorf("states = %v", got)
			}

			if _, started := o.RunCheck(context.Background()); started {
				t.Error("RunCheck from failed must be a no-op until Reset")
			}
			if !o.Reset() || o.Snapshot().State != StateIdle {
				t.Error("Reset from failed should return to idle")
			}
		})
	}
}

// TestRunCheckAtMostOneInFlight tests that a second RunCheck during Checking does nothing.
func TestRunCheckAtMostOneInFlight(t *testing.T) {
	t.Parallel()

	loc := &fakeLocator{}
	chk := &fakeChecker{resp: &model.RawResponse{Zone: "Green"}, block: make(chan struct{})}
	checking := make(chan struct{})
	var once sync.Once

	o := New(loc, &fakeConfig{cfg: completeConfig()}, chk,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithStateListener(func(s Snapshot) {
			if s.State == StateChecking {
				once.Do(func() { close(checking) })
			}
		}),
	)

	done := make(chan Snapshot, 1)
	go func() {
		snap, _ := o.RunCheck(context.Background())
		done <- snap
	}()

	select {
	case <-checking:
	case <-time.After(2 * time.Second):
		t.Fatal("check never reached checking")
	}

	snap, started := o.RunCheck(context.Background())
	if started {
		t.Error("second RunCheck must not start")
	}
	if snap.State != StateChecking {
		t.Errorf("State = %v, expected checking", snap.State)
	}
	if o.Reset() {
		t.Error("Reset must not interrupt a running check")
	}

	close(chk.block)
	final := <-done
	if final.State != StateSucceeded {
		t.Errorf("final state = %v", final.State)
	}
	if loc.calls.Load() != 1 || chk.calls.Load() != 1 {
		t.Errorf("locator calls = %d, checker calls = %d, expected 1 each", loc.calls.Load(), chk.calls.Load())
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		contains []string
	}{
		{"nil", nil, nil},
		{"incomplete", &model.IncompleteConfigError{Missing: []string{"at least one home address", "an alert email"}}, []string{"Configuration required", "home address", "alert email"}},
		{"permission", model.ErrPermissionDenied, []string{"enable location access"}},
		{"location timeout", model.ErrLocationTimeout, []string{"timed out"}},
		{"network", fmt.Errorf("%w: refused", model.ErrNetworkUnavailable), []string{"internet connection"}},
		{"request timeout", fmt.Errorf("%w: %w", model.ErrNetworkUnavailable, model.ErrRequestTimeout), []string{"timed out", "internet connection"}},
		{"http", model.NewHTTPError(400, "Latitude and longitude are required"), []string{"Latitude and longitude are required"}},
		{"http status", model.NewHTTPError(502, ""), []string{"HTTP 502: Bad Gateway"}},
		{"rejected", fmt.Errorf("%w: %w", model.ErrValidationRejected, model.NewHTTPError(400, "Invalid email")), []string{"rejected", "Invalid email"}},
		{"malformed", model.ErrMalformedResponse, []string{"unexpected response"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg := UserMessage(tc.err)
			if tc.err == nil && msg != "" {
				t.Errorf("UserMessage(nil) = %q", msg)
			}
			for _, want := range tc.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("UserMessage() = %q, expected it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	expected := map[State]string{
		StateIdle:      "idle",
		StateLocating:  "locating",
		StateChecking:  "checking",
		StateSucceeded: "succeeded",
		StateFailed:    "failed",
		State(99):      "unknown",
	}
	for s, want := range expected {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, expected %q", s, s.String(), want)
		}
	}
	if !StateFailed.Terminal() || !StateSucceeded.Terminal() || StateChecking.Terminal() {
		t.Error("unexpected Terminal classification")
	}
}
