package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CheckRequest is the body of POST /api/check-security.
// It is only built once the user configuration passed the completeness gate.
type CheckRequest struct {
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	HomeAddresses []string `json:"homeAddresses"`
}

// NewCheckRequest builds a request from a position and a complete configuration.
func NewCheckRequest(latitude, longitude float64, cfg UserConfig) (CheckRequest, error) {
	if !cfg.IsComplete() {
		return CheckRequest{}, &IncompleteConfigError{Missing: cfg.Missing()}
	}
	return CheckRequest{
		Latitude:      latitude,
		Longitude:     longitude,
		HomeAddresses: cfg.EncodedAddresses(),
	}, nil
}

// ConfigureRequest is the body of POST /api/configure-user.
type ConfigureRequest struct {
	HomeAddresses []string `json:"homeAddresses"`
	Email         string   `json:"2faEmail"`
}

// NewConfigureRequest builds the validation request for cfg.
func NewConfigureRequest(cfg UserConfig) ConfigureRequest {
	return ConfigureRequest{
		HomeAddresses: cfg.EncodedAddresses(),
		Email:         cfg.AlertEmail,
	}
}

// Status classifies a reason as favorable or unfavorable.
type Status string

const (
	// StatusGood marks a factor that contributes to safety.
	StatusGood Status = "Good"
	// StatusBad marks a factor that contributes to risk.
	StatusBad Status = "Bad"
)

// Reason is one (Status, text) pair. On the wire it is a two-element
// JSON array: ["Bad", "User is on Untrusted/Unknown Public Network."].
type Reason struct {
	Status Status
	Text   string
}

// MarshalJSON encodes the reason as a two-element array.
func (r Reason) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{string(r.Status), r.Text})
}

// UnmarshalJSON decodes a reason from a two-element array.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("reason must be a [status, text] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("reason must have 2 elements, got %d", len(pair))
	}
	r.Status = Status(pair[0])
	r.Text = pair[1]
	return nil
}

// SuggestedLocation is a nearby place considered safer than the current one.
type SuggestedLocation struct {
	Name        string `json:"name"`
	Distance    string `json:"distance"`
	SafetyLevel string `json:"safetyLevel"`
	MapLink     string `json:"mapLink"`
}

// UnmarshalJSON accepts both the camelCase keys and the keys produced by
// the location service ("Name", "Distance", "Safety Level", "Google Map Link").
func (s *SuggestedLocation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name          string `json:"name"`
		Distance      string `json:"distance"`
		SafetyLevel   string `json:"safetyLevel"`
		MapLink       string `json:"mapLink"`
		LegacyName    string `json:"Name"`
		LegacyDist    string `json:"Distance"`
		LegacySafety  string `json:"Safety Level"`
		LegacyMapLink string `json:"Google Map Link"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SuggestedLocation{
		Name:        firstNonEmpty(raw.Name, raw.LegacyName),
		Distance:    firstNonEmpty(raw.Distance, raw.LegacyDist),
		SafetyLevel: firstNonEmpty(raw.SafetyLevel, raw.LegacySafety),
		MapLink:     firstNonEmpty(raw.MapLink, raw.LegacyMapLink),
	}
	return nil
}

// SafetyScore parses the "N/10" safety level. It returns false when the
// level is not in that form.
func (s SuggestedLocation) SafetyScore() (int, bool) {
	num, _, ok := strings.Cut(strings.TrimSpace(s.SafetyLevel), "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SafetyTier classifies the safety level as "high" (8 and above),
// "medium" (6 and above) or "low".
func (s SuggestedLocation) SafetyTier() string {
	n, _ := s.SafetyScore()
	switch {
	case n >= 8:
		return "high"
	case n >= 6:
		return "medium"
	default:
		return "low"
	}
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location describes where the service believes the user is.
type Location struct {
	City        string      `json:"city,omitempty"`
	Zipcode     string      `json:"zipcode,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// ThreatInfo is the local threat intelligence attached to a response.
type ThreatInfo struct {
	Detected bool   `json:"detected"`
	Summary  string `json:"summary,omitempty"`
}

// ResponseShape tells which form a RawResponse arrived in.
type ResponseShape int

const (
	// ShapeLegacy is a response without structured reasons and actions.
	ShapeLegacy ResponseShape = iota
	// ShapeStructured is a response carrying both reasons and actions.
	ShapeStructured
)

// String returns the name of the shape.
func (s ResponseShape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeStructured:
		return "structured"
	default:
		return unknownStr
	}
}

// RawResponse is the body returned by POST /api/check-security.
//
// Reasons, Actions and SuggestedLocations are optional. A JSON null and a
// missing key both decode to a nil slice, which counts as absent.
type RawResponse struct {
	Zone            string      `json:"zone"`
	Score           float64     `json:"score"`
	Reason          string      `json:"reason,omitempty"`
	RiskFactors     []string    `json:"riskFactors"`
	Recommendations []string    `json:"recommendations"`
	Location        *Location   `json:"location,omitempty"`
	ThreatInfo      *ThreatInfo `json:"threatInfo,omitempty"`
	EmailSent       bool        `json:"emailSent"`
	SecurityCode    string      `json:"securityCode,omitempty"`

	Reasons            []Reason            `json:"reasons"`
	Actions            []string            `json:"actions"`
	SuggestedLocations []SuggestedLocation `json:"suggestedLocations,omitempty"`
}

// Shape reports whether the response carries the structured analysis.
func (r *RawResponse) Shape() ResponseShape {
	if r != nil && r.Reasons != nil && r.Actions != nil {
		return ShapeStructured
	}
	return ShapeLegacy
}

// Zipcode returns the zipcode of the reported location, or "" when absent.
func (r *RawResponse) Zipcode() string {
	if r == nil || r.Location == nil {
		return ""
	}
	return strings.TrimSpace(r.Location.Zipcode)
}

// City returns the city of the reported location, or "" when absent.
func (r *RawResponse) City() string {
	if r == nil || r.Location == nil {
		return ""
	}
	return strings.TrimSpace(r.Location.City)
}

// EmergencyAlert reports whether the service sent an emergency alert email
// for this check. Alerts are only meaningful in the Red zone.
func (r *RawResponse) EmergencyAlert() bool {
	return r != nil && r.EmailSent && ZoneOrYellow(r.Zone) == ZoneRed
}

// ServiceError is the body of a non-2xx response.
type ServiceError struct {
	Error string `json:"error"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
