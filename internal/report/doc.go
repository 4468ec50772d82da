// Package report renders security check results.
//
// Writers for three formats share the Writer interface:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for scripts
//   - MarkdownWriter: Markdown for sharing or archiving
//
// Each writer renders a single CheckResult and a Comparison of two
// results taken from the history.
package report
