package normalize

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/zonecheck/internal/model"
)

func bad(text string) model.Reason {
	return model.Reason{Status: model.StatusBad, Text: text}
}

func good(text string) model.Reason {
	return model.Reason{Status: model.StatusGood, Text: text}
}

// TestNormalizeStructuredIsIdentity tests that structured responses pass through unchanged.
func TestNormalizeStructuredIsIdentity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		resp model.RawResponse
	}{
		{
			name: "full",
			resp: model.RawResponse{
				Zone:        "Red",
				RiskFactors: []string{"User is 75km from the closest safe location"},
				Reasons:     []model.Reason{bad("Custom server reason"), good("Strong VPN")},
				Actions:     []string{"Call home", "Turn on VPN"},
				SuggestedLocations: []model.SuggestedLocation{
					{Name: "Library", Distance: "1 mile", SafetyLevel: "8/10", MapLink: "https://maps.example"},
				},
			},
		},
		{
			name: "empty reasons and actions",
			resp: model.RawResponse{Zone: "Green", Reasons: []model.Reason{}, Actions: []string{}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(&tc.resp)
			if !reflect.DeepEqual(got.Reasons, tc.resp.Reasons) {
				t.Errorf("Reasons = %v, expected %v", got.Reasons, tc.resp.Reasons)
			}
			if !reflect.DeepEqual(got.Actions, tc.resp.Actions) {
				t.Errorf("Actions = %v, expected %v", got.Actions, tc.resp.Actions)
			}
			if got.SuggestedLocations == nil {
				t.Fatal("SuggestedLocations must default to an empty slice")
			}
			if len(got.SuggestedLocations) != len(tc.resp.SuggestedLocations) {
				t.Errorf("SuggestedLocations = %v, expected %v", got.SuggestedLocations, tc.resp.SuggestedLocations)
			}
		})
	}
}

func TestNormalizeStructuredDoesNotAddFallbackLocations(t *testing.T) {
	t.Parallel()

	resp := model.RawResponse{
		Reasons: []model.Reason{bad("x")},
		Actions: []string{ActionFindNewLocation},
	}
	got := Normalize(&resp)
	if len(got.SuggestedLocations) != 0 {
		t.Errorf("expected no suggested locations, got %v", got.SuggestedLocations)
	}
}

func TestNormalizeStructuredDropsBlankAndDuplicateActions(t *testing.T) {
	t.Parallel()

	resp := model.RawResponse{
		Reasons: []model.Reason{},
		Actions: []string{"Turn on VPN", "", "  ", "Turn on VPN", "turn on vpn"},
	}
	got := Normalize(&resp)
	expected := []string{"Turn on VPN", "turn on vpn"}
	if !reflect.DeepEqual(got.Actions, expected) {
		t.Errorf("Actions = %v, expected %v", got.Actions, expected)
	}
}

func TestNormalizeDistanceFactor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		factor string
		reason string
	}{
		{"User is 75km from the closest safe location", "User is 75km from home."},
		{"Location: 12.5km from the closest safe location", "User is 12.5km from home."},
		{"Location: 3 KM from the Closest Safe Location", "User is 3km from home."},
		{"Far from the closest safe location", "User is ?km from home."},
	}

	for _, tc := range testCases {
		t.Run(tc.factor, func(t *testing.T) {
			t.Parallel()
			got := Normalize(&model.RawResponse{Zone: "Yellow", RiskFactors: []string{tc.factor}})
			if !reflect.DeepEqual(got.Reasons, []model.Reason{bad(tc.reason)}) {
				t.Errorf("Reasons = %v, expected [%q]", got.Reasons, tc.reason)
			}
			if !reflect.DeepEqual(got.Actions, []string{ActionTurnOnVPN}) {
				t.Errorf("Actions = %v", got.Actions)
			}
			if len(got.SuggestedLocations) != 0 {
				t.Errorf("unexpected suggested locations: %v", got.SuggestedLocations)
			}
		})
	}
}

func TestNormalizeNetworkAndThreatFactors(t *testing.T) {
	t.Parallel()

	resp := model.RawResponse{
		Zone:        "Red",
		RiskFactors: []string{"Unsafe WiFi detected", "3 cyber threats reported"},
		Location:    &model.Location{City: "Cambridge", Zipcode: "02139"},
	}
	got := Normalize(&resp)

	expectedActions := []string{ActionActivate2FA, ActionFindNewLocation}
	if !reflect.DeepEqual(got.Actions, expectedActions) {
		t.Errorf("Actions = %v, expected %v", got.Actions, expectedActions)
	}

	expectedReasons := []model.Reason{
		bad("User is on Untrusted/Unknown Public Network."),
		bad("There are 3 cyber threats reported in the user's Zipcode (02139)."),
	}
	if !reflect.DeepEqual(got.Reasons, expectedReasons) {
		t.Errorf("Reasons = %v, expected %v", got.Reasons, expectedReasons)
	}

	if !reflect.DeepEqual(got.SuggestedLocations, FallbackLocations()) {
		t.Errorf("SuggestedLocations = %v, expected fallback pair", got.SuggestedLocations)
	}
}

func TestNormalizeThreatPlaceholders(t *testing.T) {
	t.Parallel()

	got := Normalize(&model.RawResponse{RiskFactors: []string{"Active threat: phishing reported in area"}})
	expected := "There are multiple cyber threats reported in the user's Zipcode (unknown)."
	if len(got.Reasons) != 1 || got.Reasons[0].Text != expected {
		t.Errorf("Reasons = %v, expected [%q]", got.Reasons, expected)
	}
}

// TestNormalizeActionsHaveNoDuplicates tests that repeated factors never duplicate actions.
func TestNormalizeActionsHaveNoDuplicates(t *testing.T) {
	t.Parallel()

	factors := []string{
		"Unsafe WiFi: 'You are on CoffeeShopFree'",
		"Untrusted network",
		"5 threats reported nearby",
		"User is 2km from the closest safe location",
		"Connected to a public hotspot",
		"User is 9km from the closest safe location",
		"Active threat: malware reported in area",
	}
	got := Normalize(&model.RawResponse{RiskFactors: factors})

	seen := make(map[string]bool)
	for _, a := range got.Actions {
		if a == "" {
			t.Error("empty action")
		}
		if seen[a] {
			t.Errorf("duplicate action %q in %v", a, got.Actions)
		}
		seen[a] = true
	}
	expected := []string{ActionActivate2FA, ActionFindNewLocation, ActionTurnOnVPN}
	if !reflect.DeepEqual(got.Actions, expected) {
		t.Errorf("Actions = %v, expected %v", got.Actions, expected)
	}
	if len(got.Reasons) != len(factors) {
		t.Errorf("expected one reason per factor, got %d", len(got.Reasons))
	}
}

func TestNormalizeZoneFallback(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		zone     string
		expected model.Reason
	}{
		{"Green", good("User is in a secure location with no identified risks.")},
		{"Yellow", bad("User is in a moderately risky environment.")},
		{"Red", bad("User is in a high-risk environment.")},
		{"Purple", bad("User is in a moderately risky environment.")},
		{"", bad("User is in a moderately risky environment.")},
	}

	for _, tc := range testCases {
		t.Run(tc.zone, func(t *testing.T) {
			t.Parallel()
			got := Normalize(&model.RawResponse{Zone: tc.zone, RiskFactors: []string{}})
			if !reflect.DeepEqual(got.Reasons, []model.Reason{tc.expected}) {
				t.Errorf("Reasons = %v, expected [%v]", got.Reasons, tc.expected)
			}
			if got.Actions == nil || len(got.Actions) != 0 {
				t.Errorf("Actions = %#v, expected empty", got.Actions)
			}
		})
	}
}

func TestNormalizeUnrecognizedFactorsAreIgnored(t *testing.T) {
	t.Parallel()

	got := Normalize(&model.RawResponse{Zone: "Green", RiskFactors: []string{"Something odd happened"}})
	if len(got.Reasons) != 0 || len(got.Actions) != 0 {
		t.Errorf("expected empty analysis, got %+v", got)
	}
}

func TestNormalizeLegacyKeepsServerLocations(t *testing.T) {
	t.Parallel()

	server := []model.SuggestedLocation{{Name: "Police Station", SafetyLevel: "10/10"}}
	got := Normalize(&model.RawResponse{RiskFactors: []string{"Unsafe WiFi"}, SuggestedLocations: server})
	if !reflect.DeepEqual(got.SuggestedLocations, server) {
		t.Errorf("SuggestedLocations = %v, expected %v", got.SuggestedLocations, server)
	}
}

func TestNormalizeNil(t *testing.T) {
	t.Parallel()

	got := Normalize(nil)
	if len(got.Reasons) != 1 || got.Reasons[0].Text != yellowZoneReason {
		t.Errorf("Normalize(nil) = %+v", got)
	}
}

// TestNormalizeFromJSON tests both shapes decoded from literal service bodies.
func TestNormalizeFromJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		body        string
		wantReasons int
		wantFirst   string
	}{
		{
			name:        "legacy body",
			body:        `{"zone":"Yellow","score":4,"riskFactors":["Location: 5.2km from the closest safe location"],"recommendations":["Stay alert"],"location":{"city":"boston","zipcode":"02108","coordinates":{"latitude":42.3,"longitude":-71.0}}}`,
			wantReasons: 1,
			wantFirst:   "User is 5.2km from home.",
		},
		{
			name:        "structured body with null suggestions",
			body:        `{"zone":"Green","reasons":[["Good","Home network"]],"actions":[],"suggestedLocations":null}`,
			wantReasons: 1,
			wantFirst:   "Home network",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var resp model.RawResponse
			if err := json.NewDecoder(strings.NewReader(tc.body)).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := Normalize(&resp)
			if len(got.Reasons) != tc.wantReasons || got.Reasons[0].Text != tc.wantFirst {
				t.Errorf("Reasons = %v", got.Reasons)
			}
			if got.SuggestedLocations == nil {
				t.Error("SuggestedLocations must not be nil")
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	t.Parallel()

	resp := model.RawResponse{
		Zone:        "Red",
		RiskFactors: []string{"Unsafe WiFi", "2 threats reported", "User is 1km from the closest safe location"},
		Location:    &model.Location{Zipcode: "10001"},
	}
	first := Normalize(&resp)
	for range 5 {
		if got := Normalize(&resp); !reflect.DeepEqual(got, first) {
			t.Fatalf("Normalize is not deterministic: %+v vs %+v", got, first)
		}
	}
}

// TestZoneRenderingAgrees tests that the presentation, the fallback reason
// and the emergency notice classify a zone name the same way.
func TestZoneRenderingAgrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		zone      string
		want      model.Zone
		reason    string
		emergency bool
	}{
		{zone: "Red", want: model.ZoneRed, reason: redZoneReason, emergency: true},
		{zone: "Green", want: model.ZoneGreen, reason: greenZoneReason},
		{zone: " Red ", want: model.ZoneYellow, reason: yellowZoneReason},
		{zone: "Red\n", want: model.ZoneYellow, reason: yellowZoneReason},
		{zone: "\tGreen", want: model.ZoneYellow, reason: yellowZoneReason},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			t.Parallel()

			resp := &model.RawResponse{Zone: tt.zone, EmailSent: true}
			if got := model.PresentationFor(resp.Zone).Zone; got != tt.want {
				t.Errorf("PresentationFor(%q).Zone = %v, expected %v", tt.zone, got, tt.want)
			}
			a := Normalize(resp)
			if len(a.Reasons) != 1 || a.Reasons[0].Text != tt.reason {
				t.Errorf("Normalize(%q).Reasons = %+v, expected %q", tt.zone, a.Reasons, tt.reason)
			}
			if got := resp.EmergencyAlert(); got != tt.emergency {
				t.Errorf("EmergencyAlert() for %q = %v, expected %v", tt.zone, got, tt.emergency)
			}
		})
	}
}
