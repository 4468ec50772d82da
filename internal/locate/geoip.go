package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/nao1215/zonecheck/internal/model"
)

// DefaultGeoIPURL is the default IP geolocation endpoint.
const DefaultGeoIPURL = "http://ip-api.com/json"

// geoIPAccuracy is the accuracy reported for IP based fixes, in meters.
const geoIPAccuracy = 5000

// GeoIPLocator locates the user from the public IP address of the host.
// The endpoint must answer with the ip-api.com JSON format.
type GeoIPLocator struct {
	url        string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// GeoIPOption configures a GeoIPLocator.
type GeoIPOption func(*GeoIPLocator)

// WithHTTPClient sets the HTTP client, e.g. one dialing through a proxy.
func WithHTTPClient(hc *http.Client) GeoIPOption {
	return func(g *GeoIPLocator) {
		g.httpClient = hc
	}
}

// WithGeoIPClock sets the clock used to timestamp positions.
func WithGeoIPClock(c clockwork.Clock) GeoIPOption {
	return func(g *GeoIPLocator) {
		g.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeoIPOption {
	return func(g *GeoIPLocator) {
		g.logger = logger
	}
}

// NewGeoIPLocator creates a locator querying url. An empty url uses DefaultGeoIPURL.
func NewGeoIPLocator(url string, opts ...GeoIPOption) *GeoIPLocator {
	if url == "" {
		url = DefaultGeoIPURL
	}
	g := &GeoIPLocator{
		url:        url,
		httpClient: &http.Client{},
		clock:      clockwork.NewRealClock(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// geoIPResponse is the subset of the ip-api.com answer we use.
type geoIPResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// CurrentPosition implements Locator.
func (g *GeoIPLocator) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if opts.HighAccuracy {
		g.logger.Debug("IP geolocation cannot honor high accuracy", "accuracy_m", geoIPAccuracy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %w", model.ErrLocationUnsupported, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Position{}, fmt.Errorf("%w: %w", model.ErrLocationTimeout, err)
		}
		return Position{}, fmt.Errorf("%w: %w", model.ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Position{}, fmt.Errorf("%w: geolocation service answered %d", model.ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Position{}, fmt.Errorf("%w: geolocation service answered %d", model.ErrPositionUnavailable, resp.StatusCode)
	}

	var body geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return Position{}, fmt.Errorf("%w: %w", model.ErrLocationTimeout, err)
		}
		return Position{}, fmt.Errorf("%w: decode response: %w", model.ErrPositionUnavailable, err)
	}
	if !strings.EqualFold(body.Status, "success") {
		return Position{}, fmt.Errorf("%w: %s", model.ErrPositionUnavailable, body.Message)
	}
	if err := ValidateCoordinates(body.Lat, body.Lon); err != nil {
		return Position{}, err
	}

	g.logger.Debug("position acquired from IP geolocation", "city", body.City)
	return Position{
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Accuracy:  geoIPAccuracy,
		Timestamp: g.clock.Now(),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
