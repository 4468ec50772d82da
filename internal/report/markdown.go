package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/zonecheck/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the check result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CheckResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAlert(md, result)
	w.writeReasons(md, result)
	w.writeActions(md, result)
	w.writeLocations(md, result)
	w.writeDetails(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CheckResult) {
	p := result.Presentation

	md.H1("Security Check: " + zoneHeading(p))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Zone", p.Label},
			{"Score", fmt.Sprintf("%g", result.Response.Score)},
			{"Location", placeName(&result.Response)},
			{"Position", fmt.Sprintf("%.5f, %.5f", result.Latitude, result.Longitude)},
			{"Radius", p.RadiusLabel},
			{"Checked At", result.CheckedAt.Format(timeLayout)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert matching the zone.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CheckResult) {
	resp := result.Response
	switch {
	case resp.EmergencyAlert():
		md.Cautionf("A security alert was sent to your 2FA email address. Security code: %s",
			orDash(resp.SecurityCode))
	case result.Zone() == model.ZoneRed:
		md.Cautionf("You are in a %s. Follow the recommended actions now.", result.Presentation.Title)
	case result.Zone() == model.ZoneYellow:
		md.Warningf("You are in a %s. Review the risks below.", result.Presentation.Title)
	default:
		md.Tip("No significant security risks detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeReasons(md *markdown.Markdown, result *model.CheckResult) {
	a := result.Analysis
	md.H2(reasonsTitle(a))
	md.PlainText("")

	if len(a.Reasons) == 0 {
		md.PlainText("No reasons given.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(a.Reasons))
	for _, text := range a.BadReasons() {
		rows = append(rows, []string{markBad + " " + string(model.StatusBad), text})
	}
	for _, text := range a.GoodReasons() {
		rows = append(rows, []string{markGood + " " + string(model.StatusGood), text})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeActions(md *markdown.Markdown, result *model.CheckResult) {
	md.H2("Recommended Actions")
	md.PlainText("")

	if len(result.Analysis.Actions) == 0 {
		md.PlainText("No action needed.")
		md.PlainText("")
		return
	}
	md.BulletList(result.Analysis.Actions...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeLocations(md *markdown.Markdown, result *model.CheckResult) {
	locations := result.Analysis.SuggestedLocations
	if len(locations) == 0 {
		return
	}

	md.H2("Safer Locations Nearby")
	md.PlainText("")

	rows := make([][]string, len(locations))
	for i, loc := range locations {
		link := "-"
		if loc.MapLink != "" {
			link = "[map](" + loc.MapLink + ")"
		}
		rows[i] = []string{loc.Name, orDash(loc.Distance), orDash(loc.SafetyLevel), loc.SafetyTier(), link}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Distance", "Safety Level", "Tier", "Map"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDetails writes the raw service output in collapsible blocks.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, result *model.CheckResult) {
	resp := result.Response
	if resp.ThreatInfo != nil && resp.ThreatInfo.Summary != "" {
		md.Details("Threat intelligence", resp.ThreatInfo.Summary)
	}
	if len(resp.RiskFactors) > 0 {
		md.Details("Risk factors", joinLines(resp.RiskFactors))
	}
	if len(resp.Recommendations) > 0 {
		md.Details("Service recommendations", joinLines(resp.Recommendations))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by zonecheck*")
}

// WriteComparison outputs the comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(cmp *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Security Check Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current"},
		Rows: [][]string{
			{"Checked At", cmp.Previous.CheckedAt.Format(timeLayout), cmp.Current.CheckedAt.Format(timeLayout)},
			{"Zone", zoneHeading(cmp.Previous.Presentation), zoneHeading(cmp.Current.Presentation)},
			{"Score", fmt.Sprintf("%g", cmp.Previous.Response.Score), fmt.Sprintf("%g", cmp.Current.Response.Score)},
		},
	})
	md.PlainText("")

	switch cmp.Direction {
	case DirectionWorsened:
		md.Warningf("The zone %s since the previous check.", cmp.Direction)
	case DirectionImproved:
		md.Tip("The zone improved since the previous check.")
	default:
		md.Note("The zone is unchanged since the previous check.")
	}
	md.PlainText("")

	if len(cmp.NewReasons) > 0 {
		md.H2("New Reasons")
		md.PlainText("")
		md.BulletList(reasonTexts(cmp.NewReasons)...)
		md.PlainText("")
	}
	if len(cmp.ResolvedReasons) > 0 {
		md.H2("Resolved Reasons")
		md.PlainText("")
		md.BulletList(reasonTexts(cmp.ResolvedReasons)...)
		md.PlainText("")
	}
	if len(cmp.NewActions) > 0 {
		md.H2("New Actions")
		md.PlainText("")
		md.BulletList(cmp.NewActions...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func reasonTexts(reasons []model.Reason) []string {
	texts := make([]string, len(reasons))
	for i, r := range reasons {
		texts[i] = r.Text
	}
	return texts
}

func joinLines(lines []string) string {
	return "- " + strings.Join(lines, "\n- ")
}
