// Package report renders scan results: a styled console summary, a
// standalone HTML document, and indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

// Format identifies a report output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatHTML    Format = "html"
	FormatJSON    Format = "json"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatConsole, FormatHTML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected console, html or json)", s)
	}
}

// Write renders the result in the given format.
func Write(w io.Writer, format Format, result *assessment.Result) error {
	switch format {
	case FormatConsole:
		return WriteConsole(w, result)
	case FormatHTML:
		return WriteHTML(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteJSON writes the full scan result as indented JSON.
func WriteJSON(w io.Writer, result *assessment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// pipelineCount is the per-project pipeline figure shown in reports:
// YAML pipelines plus classic release definitions.
func pipelineCount(p assessment.Project) int {
	return p.Pipelines.YAMLCount + p.Pipelines.ReleaseDefinitions
}

// comma renders a count with thousands separators.
func comma(n int) string {
	s := strconv.Itoa(n)
	start := 0
	if strings.HasPrefix(s, "-") {
		start = 1
	}

	var b strings.Builder
	b.WriteString(s[:start])
	for i, digit := range s[start:] {
		if i > 0 && (len(s)-start-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

// projectNotes flags the migration-relevant quirks of one project.
func projectNotes(p assessment.Project) string {
	var notes []string
	if p.Repositories.TFVCUsed {
		notes = append(notes, "TFVC")
	}
	if p.Pipelines.ReleaseDefinitions > 0 {
		notes = append(notes, fmt.Sprintf("%d Classic", p.Pipelines.ReleaseDefinitions))
	}
	if len(p.WorkItems.CustomTypes) > 0 {
		notes = append(notes, fmt.Sprintf("%d custom types", len(p.WorkItems.CustomTypes)))
	}
	if len(notes) == 0 {
		return "-"
	}
	return strings.Join(notes, ", ")
}
