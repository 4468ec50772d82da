package model

// unknownStr is the string representation for unknown values.
const unknownStr = "unknown"

// Zone is the discrete risk level returned by the risk-assessment service.
// Zones are ordered by severity: Green < Yellow < Red.
type Zone int

const (
	// ZoneGreen indicates a secure location with no identified risks.
	ZoneGreen Zone = iota
	// ZoneYellow indicates a moderately risky environment.
	ZoneYellow
	// ZoneRed indicates a high-risk environment.
	ZoneRed
)

// String returns the wire name of the zone ("Green", "Yellow", "Red").
func (z Zone) String() string {
	switch z {
	case ZoneGreen:
		return "Green"
	case ZoneYellow:
		return "Yellow"
	case ZoneRed:
		return "Red"
	default:
		return unknownStr
	}
}

// ParseZone converts a wire zone name into a Zone.
// Matching is exact; the second return value is false for anything else.
func ParseZone(s string) (Zone, bool) {
	switch s {
	case "Green":
		return ZoneGreen, true
	case "Yellow":
		return ZoneYellow, true
	case "Red":
		return ZoneRed, true
	default:
		return ZoneYellow, false
	}
}

// ZoneOrYellow converts a wire zone name into a Zone, falling back to
// Yellow for unrecognized values.
func ZoneOrYellow(s string) Zone {
	z, _ := ParseZone(s)
	return z
}

// MarshalText encodes the zone as its wire name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText decodes a wire name, mapping unrecognized names to Yellow.
func (z *Zone) UnmarshalText(text []byte) error {
	*z = ZoneOrYellow(string(text))
	return nil
}

// MoreSevereThan reports whether z is strictly more severe than other.
func (z Zone) MoreSevereThan(other Zone) bool {
	return z > other
}

// Presentation holds everything a view needs to render a zone.
// It is identical for the map circle, the status summary and every report.
type Presentation struct {
	Zone         Zone    `json:"zone"`
	Label        string  `json:"label"`
	Title        string  `json:"title"`
	Icon         string  `json:"icon"`
	RadiusMeters int     `json:"radiusMeters"`
	RadiusLabel  string  `json:"radiusLabel"`
	FillColor    string  `json:"fillColor"`
	StrokeColor  string  `json:"strokeColor"`
	FillOpacity  float64 `json:"fillOpacity"`
}

// zoneFillOpacity is shared by every zone circle.
const zoneFillOpacity = 0.3

// presentationMapping is the single source of truth for zone rendering.
var presentationMapping = map[Zone]Presentation{
	ZoneGreen: {
		Zone:         ZoneGreen,
		Label:        "Green",
		Title:        "SECURE ZONE",
		Icon:         "✅",
		RadiusMeters: 2000,
		RadiusLabel:  "2km",
		FillColor:    "#22c55e",
		StrokeColor:  "#16a34a",
		FillOpacity:  zoneFillOpacity,
	},
	ZoneYellow: {
		Zone:         ZoneYellow,
		Label:        "Yellow",
		Title:        "CAUTION ZONE",
		Icon:         "⚠️",
		RadiusMeters: 1000,
		RadiusLabel:  "1km",
		FillColor:    "#f59e0b",
		StrokeColor:  "#d97706",
		FillOpacity:  zoneFillOpacity,
	},
	ZoneRed: {
		Zone:         ZoneRed,
		Label:        "Red",
		Title:        "DANGER ZONE",
		Icon:         "🚨",
		RadiusMeters: 500,
		RadiusLabel:  "500m",
		FillColor:    "#ef4444",
		StrokeColor:  "#dc2626",
		FillOpacity:  zoneFillOpacity,
	},
}

// Presentation returns the rendering parameters of the zone.
// Out-of-range values get the Yellow presentation.
func (z Zone) Presentation() Presentation {
	if p, ok := presentationMapping[z]; ok {
		return p
	}
	return presentationMapping[ZoneYellow]
}

// PresentationFor maps a wire zone name to its rendering parameters.
// It is total: any name other than exactly "Green", "Yellow" or "Red",
// including the empty string and differently cased or padded names, falls
// back to the Yellow presentation.
func PresentationFor(zone string) Presentation {
	return ZoneOrYellow(zone).Presentation()
}
