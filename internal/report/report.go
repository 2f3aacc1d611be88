// Package report renders one analysis result in four interchangeable
// formats: console text, JSON, Markdown, and HTML.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/suggest"
)

// Format selects a rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML:
		return Format(s), nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (text, json, markdown, html)", s)
}

// Summary aggregates the run's metrics.
type Summary struct {
	Configs    int           `json:"configs"`
	Fields     int           `json:"fields"`
	MaxDepth   int           `json:"max_depth"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
	Duration   time.Duration `json:"duration_ns"`
	Passed     bool          `json:"passed"`
}

// Report is the single source every rendering draws from.
type Report struct {
	Title       string                         `json:"title"`
	GeneratedAt time.Time                      `json:"generated_at"`
	Summary     Summary                        `json:"summary"`
	Violations  []analyze.Violation            `json:"violations"`
	Suggestions map[string][]suggest.Candidate `json:"suggestions,omitempty"`
}

// Render returns the report in the requested format.
func (r *Report) Render(f Format) (string, error) {
	switch f {
	case FormatText:
		return r.Text(), nil
	case FormatJSON:
		return r.JSON()
	case FormatMarkdown:
		return r.Markdown(), nil
	case FormatHTML:
		return r.HTML(), nil
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

// JSON renders the report for programmatic consumption.
func (r *Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	return string(data), nil
}

// Text renders the console report: errors first, then warnings, then the
// summary line.
func (r *Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", r.Title, strings.Repeat("=", len(r.Title)))

	errs, warns := r.split()
	if len(errs) == 0 && len(warns) == 0 {
		b.WriteString("No identifier length issues found.\n")
	}

	if len(errs) > 0 {
		fmt.Fprintf(&b, "ERRORS (%d): identifiers over the hard limit:\n", len(errs))
		r.writeViolations(&b, errs)
		b.WriteString("\n")
	}
	if len(warns) > 0 {
		fmt.Fprintf(&b, "WARNINGS (%d): identifiers approaching the limit:\n", len(warns))
		r.writeViolations(&b, warns)
		b.WriteString("\n")
	}

	status := "PASS"
	if !r.Summary.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s — %d configs, %d fields analyzed in %s\n",
		status, r.Summary.Configs, r.Summary.Fields, r.Summary.Duration.Round(time.Microsecond))

	return b.String()
}

func (r *Report) writeViolations(b *strings.Builder, vs []analyze.Violation) {
	for _, v := range vs {
		fmt.Fprintf(b, "  [%s] %s\n      %s (%d chars, %s)\n",
			v.ConfigName, v.FieldPath, v.Identifier, v.Length, v.ObjectType)
		for i, c := range r.Suggestions[v.FieldPath] {
			marker := "   "
			if i == 0 {
				marker = "-> "
			}
			fmt.Fprintf(b, "      %s%s (%d chars, quality %.2f)\n", marker, c.Value, len(c.Value), c.Quality)
		}
	}
}

// Markdown renders the archival document: headings plus one table per
// severity and a suggestions table.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Configs analyzed | %d |\n", r.Summary.Configs)
	fmt.Fprintf(&b, "| Fields analyzed | %d |\n", r.Summary.Fields)
	fmt.Fprintf(&b, "| Max nesting depth | %d |\n", r.Summary.MaxDepth)
	fmt.Fprintf(&b, "| Errors | %d |\n", r.Summary.Errors)
	fmt.Fprintf(&b, "| Warnings | %d |\n", r.Summary.Warnings)
	fmt.Fprintf(&b, "| Result | %s |\n\n", passFail(r.Summary.Passed))

	errs, warns := r.split()
	writeSection := func(title string, vs []analyze.Violation) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(vs) == 0 {
			b.WriteString("None.\n\n")
			return
		}
		b.WriteString("| Config | Field path | Identifier | Length | Type |\n|---|---|---|---|---|\n")
		for _, v := range vs {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %d | %s |\n",
				v.ConfigName, v.FieldPath, v.Identifier, v.Length, v.ObjectType)
		}
		b.WriteString("\n")
	}
	writeSection("Errors", errs)
	writeSection("Warnings", warns)

	if len(r.Suggestions) > 0 {
		b.WriteString("## Suggested renames\n\n")
		b.WriteString("| Field path | Suggestion | Length | Quality |\n|---|---|---|---|\n")
		for _, v := range r.Violations {
			for _, c := range r.Suggestions[v.FieldPath] {
				fmt.Fprintf(&b, "| %s | `%s` | %d | %.2f |\n", v.FieldPath, c.Value, len(c.Value), c.Quality)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML wraps the Markdown rendering in a minimal standalone page. The body
// keeps the Markdown text preformatted rather than converting it; any
// Markdown viewer or the browser's reader mode handles the rest.
func (r *Report) HTML() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(r.Title))
	b.WriteString("<style>body{font-family:monospace;margin:2em;max-width:72em}</style>\n")
	b.WriteString("</head>\n<body>\n<pre>\n")
	b.WriteString(html.EscapeString(r.Markdown()))
	b.WriteString("</pre>\n</body>\n</html>\n")
	return b.String()
}

func (r *Report) split() (errs, warns []analyze.Violation) {
	for _, v := range r.Violations {
		if v.Severity == analyze.SeverityError {
			errs = append(errs, v)
		} else {
			warns = append(warns, v)
		}
	}
	return errs, warns
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
