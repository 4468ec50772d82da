// Package locate acquires the current position of the user.
//
// A Locator performs a one-shot position request. Two sources are
// provided: StaticLocator, for coordinates given on the command line, and
// GeoIPLocator, which asks an IP geolocation service. CachingLocator wraps
// either one and applies the request Options (timeout and maximum cached
// position age). Every failure wraps one of model.ErrPermissionDenied,
// model.ErrPositionUnavailable, model.ErrLocationTimeout or
// model.ErrLocationUnsupported.
package locate

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/zonecheck/internal/model"
)

// Position is a geographic fix.
type Position struct {
	Latitude  float64
	Longitude float64
	// Accuracy is the radius of uncertainty in meters. Zero means unknown.
	Accuracy  float64
	Timestamp time.Time
}

// Options controls a position request.
type Options struct {
	// HighAccuracy asks for the most precise fix the source can give.
	HighAccuracy bool
	// Timeout bounds the request. Zero disables it.
	Timeout time.Duration
	// MaximumAge is the age up to which a cached position is acceptable.
	// Zero always requests a fresh fix.
	MaximumAge time.Duration
}

// DefaultOptions returns the options used for security checks:
// high accuracy, a 10 second timeout and positions up to 60 seconds old.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaximumAge:   60 * time.Second,
	}
}

// Locator performs one-shot position requests.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// ValidateCoordinates reports whether latitude and longitude are within range.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", model.ErrPositionUnavailable, latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", model.ErrPositionUnavailable, longitude)
	}
	return nil
}
