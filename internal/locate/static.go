package locate

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/nao1215/zonecheck/internal/model"
)

// StaticLocator always reports the same coordinates.
// The zero value has no coordinates and reports model.ErrLocationUnsupported.
type StaticLocator struct {
	position *Position
	clock    clockwork.Clock
}

// NewStaticLocator creates a locator for fixed coordinates.
func NewStaticLocator(latitude, longitude float64, clock clockwork.Clock) *StaticLocator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StaticLocator{
		position: &Position{Latitude: latitude, Longitude: longitude},
		clock:    clock,
	}
}

// CurrentPosition implements Locator.
func (s *StaticLocator) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if s == nil || s.position == nil {
		return Position{}, model.ErrLocationUnsupported
	}
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if err := ValidateCoordinates(s.position.Latitude, s.position.Longitude); err != nil {
		return Position{}, err
	}
	pos := *s.position
	pos.Timestamp = s.clock.Now()
	return pos, nil
}
