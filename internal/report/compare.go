package report

import (
	"github.com/nao1215/zonecheck/internal/model"
)

// Zone directions between two checks.
const (
	DirectionWorsened  = "worsened"
	DirectionImproved  = "improved"
	DirectionUnchanged = "unchanged"
)

// Comparison is the difference between an older and a newer check.
type Comparison struct {
	Previous model.CheckResult `json:"previous"`
	Current  model.CheckResult `json:"current"`
	// Direction is one of the Direction constants.
	Direction       string         `json:"direction"`
	ScoreDelta      float64        `json:"scoreDelta"`
	NewReasons      []model.Reason `json:"newReasons"`
	ResolvedReasons []model.Reason `json:"resolvedReasons"`
	NewActions      []string       `json:"newActions"`
}

// Compare computes the comparison of previous against current.
func Compare(previous, current model.CheckResult) *Comparison {
	cmp := &Comparison{
		Previous:        previous,
		Current:         current,
		Direction:       DirectionUnchanged,
		ScoreDelta:      current.Response.Score - previous.Response.Score,
		NewReasons:      reasonDiff(current.Analysis.Reasons, previous.Analysis.Reasons),
		ResolvedReasons: reasonDiff(previous.Analysis.Reasons, current.Analysis.Reasons),
		NewActions:      stringDiff(current.Analysis.Actions, previous.Analysis.Actions),
	}

	switch {
	case current.Zone().MoreSevereThan(previous.Zone()):
		cmp.Direction = DirectionWorsened
	case previous.Zone().MoreSevereThan(current.Zone()):
		cmp.Direction = DirectionImproved
	}
	return cmp
}

// Changed reports whether anything differs between the two checks.
func (c *Comparison) Changed() bool {
	return c.Direction != DirectionUnchanged ||
		c.ScoreDelta != 0 ||
		len(c.NewReasons) > 0 ||
		len(c.ResolvedReasons) > 0 ||
		len(c.NewActions) > 0
}

// reasonDiff returns the reasons of a that are not in b, in order.
func reasonDiff(a, b []model.Reason) []model.Reason {
	seen := make(map[model.Reason]struct{}, len(b))
	for _, r := range b {
		seen[r] = struct{}{}
	}
	diff := []model.Reason{}
	for _, r := range a {
		if _, ok := seen[r]; !ok {
			diff = append(diff, r)
		}
	}
	return diff
}

func stringDiff(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	diff := []string{}
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			diff = append(diff, s)
		}
	}
	return diff
}
