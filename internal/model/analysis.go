package model

// Analysis is the canonical result of a security check, derived from a
// RawResponse regardless of the shape the response arrived in.
type Analysis struct {
	Reasons            []Reason            `json:"reasons"`
	Actions            []string            `json:"actions"`
	SuggestedLocations []SuggestedLocation `json:"suggestedLocations"`
}

// GoodReasons returns the texts of the favorable reasons, in order.
func (a Analysis) GoodReasons() []string {
	return a.reasonTexts(StatusGood)
}

// BadReasons returns the texts of the unfavorable reasons, in order.
func (a Analysis) BadReasons() []string {
	return a.reasonTexts(StatusBad)
}

// HasRisks reports whether at least one unfavorable reason is present.
func (a Analysis) HasRisks() bool {
	for _, r := range a.Reasons {
		if r.Status == StatusBad {
			return true
		}
	}
	return false
}

func (a Analysis) reasonTexts(status Status) []string {
	var texts []string
	for _, r := range a.Reasons {
		if r.Status == status {
			texts = append(texts, r.Text)
		}
	}
	return texts
}
