package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/zonecheck/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a single check result.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CheckResult) (int, error)

	// WriteComparison outputs the difference between two checks.
	WriteComparison(cmp *Comparison) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for every timestamp in rendered reports.
const timeLayout = "2006-01-02 15:04:05 MST"

// placeName formats the reported city and zipcode, e.g. "Cambridge (02139)".
// Cities arrive in whatever case the service stores them.
func placeName(resp *model.RawResponse) string {
	city := resp.City()
	if city != "" {
		city = cases.Title(language.English).String(strings.ToLower(city))
	}
	zip := resp.Zipcode()
	switch {
	case city != "" && zip != "":
		return city + " (" + zip + ")"
	case city != "":
		return city
	case zip != "":
		return zip
	default:
		return "unknown"
	}
}

// zoneHeading returns e.g. "🚨 DANGER ZONE".
func zoneHeading(p model.Presentation) string {
	return p.Icon + " " + p.Title
}

// Reason markers.
const (
	markBad  = "❌"
	markGood = "✅"
)

// reasonsTitle names the reasons section: an assessment when something is
// wrong, a status otherwise.
func reasonsTitle(a model.Analysis) string {
	if a.HasRisks() {
		return "Security Assessment"
	}
	return "Security Status"
}

// orDash replaces an empty string with "-".
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
