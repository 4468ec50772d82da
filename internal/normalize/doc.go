// Package normalize turns the risk-assessment service's response into the
// canonical model.Analysis consumed by every view.
//
// The service answers in one of two shapes. The structured shape carries
// reasons, actions and suggested locations directly and is passed through.
// The legacy shape only carries free-text risk factors, which are matched
// against known phrases to synthesize the same analysis. Matching is plain
// case-insensitive substring search; phrases that match none of the rules
// are ignored.
package normalize
