package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckResult is one completed security check. It is what report writers
// render and what the history table stores.
type CheckResult struct {
	ID           string       `json:"id"`
	CheckedAt    time.Time    `json:"checkedAt"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Response     RawResponse  `json:"response"`
	Analysis     Analysis     `json:"analysis"`
	Presentation Presentation `json:"presentation"`
}

// NewCheckResult assembles a CheckResult with a fresh random ID.
// The presentation is derived from the response zone.
func NewCheckResult(checkedAt time.Time, latitude, longitude float64, resp RawResponse, analysis Analysis) CheckResult {
	return CheckResult{
		ID:           uuid.NewString(),
		CheckedAt:    checkedAt,
		Latitude:     latitude,
		Longitude:    longitude,
		Response:     resp,
		Analysis:     analysis,
		Presentation: PresentationFor(resp.Zone),
	}
}

// Zone returns the zone of the result, with unknown values mapped to Yellow.
func (r CheckResult) Zone() Zone {
	return r.Presentation.Zone
}
