package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/zonecheck/internal/model"
)

// Recommended actions produced for legacy responses.
const (
	ActionTurnOnVPN       = "Turn on VPN"
	ActionActivate2FA     = "Activate 2-Factor Authentication"
	ActionFindNewLocation = "Find a new location"
)

// Placeholders used when a factor omits the value a sentence needs.
const (
	distancePlaceholder    = "?"
	threatCountPlaceholder = "multiple"
	zipcodePlaceholder     = "unknown"
)

// Zone sentences used when the response carries no risk factors.
const (
	greenZoneReason  = "User is in a secure location with no identified risks."
	yellowZoneReason = "User is in a moderately risky environment."
	redZoneReason    = "User is in a high-risk environment."
)

var (
	distancePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*km`)
	countPattern    = regexp.MustCompile(`\d+`)
)

// fallbackLocations is suggested when the user should move but the
// service did not suggest anywhere.
var fallbackLocations = []model.SuggestedLocation{
	{
		Name:        "Local Public Library",
		Distance:    "0.5 miles",
		SafetyLevel: "9/10",
		MapLink:     "https://www.google.com/maps/search/public+library",
	},
	{
		Name:        "Nearby Coffee Shop",
		Distance:    "0.8 miles",
		SafetyLevel: "7/10",
		MapLink:     "https://www.google.com/maps/search/coffee+shop",
	},
}

// FallbackLocations returns a copy of the suggested locations used when
// the service suggested none.
func FallbackLocations() []model.SuggestedLocation {
	return append([]model.SuggestedLocation(nil), fallbackLocations...)
}

// Normalize derives the canonical Analysis from a service response.
// It is pure and total: a nil response is treated as an empty legacy
// response in an unknown zone.
func Normalize(resp *model.RawResponse) model.Analysis {
	if resp == nil {
		resp = &model.RawResponse{}
	}
	if resp.Shape() == model.ShapeStructured {
		return fromStructured(resp)
	}
	return fromLegacy(resp)
}

func fromStructured(resp *model.RawResponse) model.Analysis {
	actions := newActionSet()
	actions.add(resp.Actions...)

	locations := resp.SuggestedLocations
	if locations == nil {
		locations = []model.SuggestedLocation{}
	}
	return model.Analysis{
		Reasons:            append([]model.Reason{}, resp.Reasons...),
		Actions:            actions.list(),
		SuggestedLocations: append([]model.SuggestedLocation{}, locations...),
	}
}

func fromLegacy(resp *model.RawResponse) model.Analysis {
	reasons := []model.Reason{}
	actions := newActionSet()

	for _, factor := range resp.RiskFactors {
		if reason, acts, ok := matchFactor(factor, resp); ok {
			reasons = append(reasons, reason)
			actions.add(acts...)
		}
	}

	if len(reasons) == 0 && len(resp.RiskFactors) == 0 {
		reasons = append(reasons, zoneReason(resp.Zone))
	}

	locations := []model.SuggestedLocation{}
	if len(resp.SuggestedLocations) > 0 {
		locations = append(locations, resp.SuggestedLocations...)
	} else if actions.contains(ActionFindNewLocation) {
		locations = FallbackLocations()
	}

	return model.Analysis{
		Reasons:            reasons,
		Actions:            actions.list(),
		SuggestedLocations: locations,
	}
}

// rule matches one family of risk factor phrases.
type rule struct {
	matches func(lower string) bool
	derive  func(factor string, resp *model.RawResponse) (model.Reason, []string)
}

// rules are tried in order; the first match wins for each factor.
var rules = []rule{
	{matches: isDistanceFactor, derive: deriveDistance},
	{matches: isNetworkFactor, derive: deriveNetwork},
	{matches: isThreatFactor, derive: deriveThreat},
}

func matchFactor(factor string, resp *model.RawResponse) (model.Reason, []string, bool) {
	lower := strings.ToLower(factor)
	for _, r := range rules {
		if r.matches(lower) {
			reason, actions := r.derive(factor, resp)
			return reason, actions, true
		}
	}
	return model.Reason{}, nil, false
}

func isDistanceFactor(lower string) bool {
	return strings.Contains(lower, "from the closest safe location")
}

func isNetworkFactor(lower string) bool {
	for _, phrase := range []string{"unsafe wifi", "untrusted", "public network", "public hotspot"} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func isThreatFactor(lower string) bool {
	return strings.Contains(lower, "threat") && strings.Contains(lower, "reported")
}

func deriveDistance(factor string, _ *model.RawResponse) (model.Reason, []string) {
	distance := distancePlaceholder
	if m := distancePattern.FindStringSubmatch(strings.ToLower(factor)); m != nil {
		distance = m[1]
	}
	return model.Reason{
		Status: model.StatusBad,
		Text:   fmt.Sprintf("User is %skm from home.", distance),
	}, []string{ActionTurnOnVPN}
}

func deriveNetwork(_ string, _ *model.RawResponse) (model.Reason, []string) {
	return model.Reason{
		Status: model.StatusBad,
		Text:   "User is on Untrusted/Unknown Public Network.",
	}, []string{ActionActivate2FA, ActionFindNewLocation}
}

func deriveThreat(factor string, resp *model.RawResponse) (model.Reason, []string) {
	count := threatCountPlaceholder
	if m := countPattern.FindString(factor); m != "" {
		count = m
	}
	zip := resp.Zipcode()
	if zip == "" {
		zip = zipcodePlaceholder
	}
	return model.Reason{
		Status: model.StatusBad,
		Text:   fmt.Sprintf("There are %s cyber threats reported in the user's Zipcode (%s).", count, zip),
	}, []string{ActionActivate2FA, ActionFindNewLocation}
}

func zoneReason(zone string) model.Reason {
	switch z, _ := model.ParseZone(zone); z {
	case model.ZoneGreen:
		return model.Reason{Status: model.StatusGood, Text: greenZoneReason}
	case model.ZoneRed:
		return model.Reason{Status: model.StatusBad, Text: redZoneReason}
	default:
		return model.Reason{Status: model.StatusBad, Text: yellowZoneReason}
	}
}

// actionSet is an insertion-ordered set of non-empty action strings.
type actionSet struct {
	order []string
	seen  map[string]struct{}
}

func newActionSet() *actionSet {
	return &actionSet{order: []string{}, seen: make(map[string]struct{})}
}

func (s *actionSet) add(actions ...string) {
	for _, a := range actions {
		if strings.TrimSpace(a) == "" {
			continue
		}
		if _, ok := s.seen[a]; ok {
			continue
		}
		s.seen[a] = struct{}{}
		s.order = append(s.order, a)
	}
}

func (s *actionSet) contains(action string) bool {
	_, ok := s.seen[action]
	return ok
}

func (s *actionSet) list() []string {
	return s.order
}
