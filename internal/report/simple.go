package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/zonecheck/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds raw risk factors and recommendations from the service.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the check result in human-readable format.
func (w *SimpleWriter) Write(result *model.CheckResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeEmergency(&sb, result)
	w.writeReasons(&sb, result)
	w.writeServiceDetails(&sb, result)
	w.writeActions(&sb, result)
	w.writeLocations(&sb, result)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CheckResult) {
	p := result.Presentation

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                      ZONECHECK SECURITY REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Zone:       %s (%s)\n", zoneHeading(p), p.Label)
	fmt.Fprintf(sb, "Score:      %g\n", result.Response.Score)
	fmt.Fprintf(sb, "Location:   %s\n", placeName(&result.Response))
	fmt.Fprintf(sb, "Position:   %.5f, %.5f\n", result.Latitude, result.Longitude)
	fmt.Fprintf(sb, "Radius:     %s\n", p.RadiusLabel)
	fmt.Fprintf(sb, "Checked At: %s\n", result.CheckedAt.Format(timeLayout))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeEmergency(sb *strings.Builder, result *model.CheckResult) {
	if !result.Response.EmergencyAlert() {
		return
	}
	writeSection(sb, "EMERGENCY ALERT")
	sb.WriteString("  A security alert was sent to your 2FA email address.\n")
	if code := result.Response.SecurityCode; code != "" {
		fmt.Fprintf(sb, "  Security code: %s\n", code)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeReasons(sb *strings.Builder, result *model.CheckResult) {
	a := result.Analysis
	if len(a.Reasons) == 0 {
		return
	}
	writeSection(sb, strings.ToUpper(reasonsTitle(a)))
	for _, text := range a.BadReasons() {
		fmt.Fprintf(sb, "  %s %s\n", markBad, text)
	}
	for _, text := range a.GoodReasons() {
		fmt.Fprintf(sb, "  %s %s\n", markGood, text)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeServiceDetails(sb *strings.Builder, result *model.CheckResult) {
	resp := result.Response
	threat := resp.ThreatInfo != nil && resp.ThreatInfo.Summary != ""
	if !threat && (!w.verbose || len(resp.RiskFactors) == 0) {
		return
	}

	writeSection(sb, "THREAT INTELLIGENCE")
	if threat {
		fmt.Fprintf(sb, "  %s\n", resp.ThreatInfo.Summary)
	}
	if w.verbose {
		for _, f := range resp.RiskFactors {
			fmt.Fprintf(sb, "  [!] %s\n", f)
		}
		for _, r := range resp.Recommendations {
			fmt.Fprintf(sb, "  [>] %s\n", r)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeActions(sb *strings.Builder, result *model.CheckResult) {
	actions := result.Analysis.Actions
	writeSection(sb, "RECOMMENDED ACTIONS")
	if len(actions) == 0 {
		sb.WriteString("  No action needed\n\n")
		return
	}
	for i, a := range actions {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, a)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLocations(sb *strings.Builder, result *model.CheckResult) {
	locations := result.Analysis.SuggestedLocations
	if len(locations) == 0 {
		return
	}
	writeSection(sb, "SAFER LOCATIONS NEARBY")
	for _, loc := range locations {
		fmt.Fprintf(sb, "  * %s (%s, safety %s, %s)\n", loc.Name, orDash(loc.Distance), orDash(loc.SafetyLevel), loc.SafetyTier())
		if loc.MapLink != "" {
			fmt.Fprintf(sb, "    %s\n", loc.MapLink)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// WriteComparison outputs the difference between two checks.
func (w *SimpleWriter) WriteComparison(cmp *Comparison) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "CHECK COMPARISON")
	fmt.Fprintf(&sb, "  Previous: %s  %s\n", cmp.Previous.CheckedAt.Format(timeLayout), zoneHeading(cmp.Previous.Presentation))
	fmt.Fprintf(&sb, "  Current:  %s  %s\n", cmp.Current.CheckedAt.Format(timeLayout), zoneHeading(cmp.Current.Presentation))
	fmt.Fprintf(&sb, "  Zone:     %s\n", cmp.Direction)
	fmt.Fprintf(&sb, "  Score:    %+g\n", cmp.ScoreDelta)
	sb.WriteString("\n")

	if !cmp.Changed() {
		sb.WriteString("  No changes since the previous check.\n")
		return io.WriteString(w.output, sb.String())
	}
	for _, r := range cmp.NewReasons {
		fmt.Fprintf(&sb, "  [+] %s\n", r.Text)
	}
	for _, r := range cmp.ResolvedReasons {
		fmt.Fprintf(&sb, "  [-] %s\n", r.Text)
	}
	for _, a := range cmp.NewActions {
		fmt.Fprintf(&sb, "  [>] %s\n", a)
	}
	return io.WriteString(w.output, sb.String())
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
