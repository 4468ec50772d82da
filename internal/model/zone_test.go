package model

import (
	"encoding/json"
	"testing"
)

func TestZoneString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		zone     Zone
		expected string
	}{
		{ZoneGreen, "Green"},
		{ZoneYellow, "Yellow"},
		{ZoneRed, "Red"},
		{Zone(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.zone.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.zone.String(), tc.expected)
			}
		})
	}
}

// TestZoneOrdering tests that zones are ordered Green < Yellow < Red.
func TestZoneOrdering(t *testing.T) {
	t.Parallel()

	if !ZoneRed.MoreSevereThan(ZoneYellow) || !ZoneYellow.MoreSevereThan(ZoneGreen) {
		t.Error("expected Green < Yellow < Red")
	}
	if ZoneGreen.MoreSevereThan(ZoneGreen) {
		t.Error("a zone is not more severe than itself")
	}
}

func TestPresentationFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		zone   string
		radius int
		label  string
		title  string
		fill   string
	}{
		{"Green", 2000, "Green", "SECURE ZONE", "#22c55e"},
		{"Yellow", 1000, "Yellow", "CAUTION ZONE", "#f59e0b"},
		{"Red", 500, "Red", "DANGER ZONE", "#ef4444"},
	}

	for _, tc := range testCases {
		t.Run(tc.zone, func(t *testing.T) {
			t.Parallel()
			p := PresentationFor(tc.zone)
			if p.RadiusMeters != tc.radius {
				t.Errorf("RadiusMeters = %d, expected %d", p.RadiusMeters, tc.radius)
			}
			if p.Label != tc.label || p.Title != tc.title || p.FillColor != tc.fill {
				t.Errorf("unexpected presentation: %+v", p)
			}
			if p.FillOpacity != 0.3 {
				t.Errorf("FillOpacity = %v, expected 0.3", p.FillOpacity)
			}
			zone, _ := ParseZone(tc.zone)
			if zone.Presentation() != p {
				t.Errorf("Zone.Presentation() differs from PresentationFor(%q)", tc.zone)
			}
		})
	}
}

// TestPresentationForFallsBackToYellow tests that the mapping is total.
func TestPresentationForFallsBackToYellow(t *testing.T) {
	t.Parallel()

	yellow := ZoneYellow.Presentation()
	for _, in := range []string{"", "green", "RED", "Purple", "null", "0", " Red ", "Red\n", "\tGreen"} {
		if got := PresentationFor(in); got != yellow {
			t.Errorf("PresentationFor(%q) = %+v, expected Yellow", in, got)
		}
	}
	if got := Zone(-1).Presentation(); got != yellow {
		t.Errorf("Zone(-1).Presentation() = %+v, expected Yellow", got)
	}
}

func TestZoneJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(ZoneRed.Presentation())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var p Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Zone != ZoneRed {
		t.Errorf("Zone = %v after decode, expected Red", p.Zone)
	}
}
