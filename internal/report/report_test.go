package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/suggest"
)

func sampleReport() *Report {
	return &Report{
		Title:       "Identifier length report",
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Summary: Summary{
			Configs:  2,
			Fields:   40,
			MaxDepth: 4,
			Errors:   1,
			Warnings: 1,
			Passed:   false,
		},
		Violations: []analyze.Violation{
			{
				FieldPath:  "pages.hero.backgroundConfiguration",
				Identifier: "pages_blocks_hero_background_configuration_settings_extra_long_x",
				Length:     64,
				Severity:   analyze.SeverityError,
				ObjectType: analyze.ObjectTable,
				ConfigName: "pages",
			},
			{
				FieldPath:  "header.navItems",
				Identifier: "header_navigation_items_configuration_array_almost_over",
				Length:     56,
				Severity:   analyze.SeverityWarning,
				ObjectType: analyze.ObjectTable,
				ConfigName: "header",
			},
		},
		Suggestions: map[string][]suggest.Candidate{
			"pages.hero.backgroundConfiguration": {
				{Value: "pages_blocks_hero_bg_config_settings", Quality: 0.55},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "markdown", "html", ""} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestText_ErrorsBeforeWarnings(t *testing.T) {
	out := sampleReport().Text()

	errIdx := strings.Index(out, "ERRORS (1)")
	warnIdx := strings.Index(out, "WARNINGS (1)")
	if errIdx < 0 || warnIdx < 0 || errIdx > warnIdx {
		t.Fatalf("sections missing or misordered:\n%s", out)
	}
	if !strings.Contains(out, "pages_blocks_hero_bg_config_settings") {
		t.Errorf("recommendation missing:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("status line missing:\n%s", out)
	}
}

func TestText_CleanRun(t *testing.T) {
	r := &Report{Title: "Report", Summary: Summary{Passed: true}}
	out := r.Text()
	if !strings.Contains(out, "No identifier length issues") {
		t.Errorf("clean-run message missing:\n%s", out)
	}
	if !strings.Contains(out, "PASS") {
		t.Errorf("status missing:\n%s", out)
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	out, err := sampleReport().JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Summary.Errors != 1 || len(decoded.Violations) != 2 {
		t.Errorf("decoded = %+v", decoded.Summary)
	}
	if decoded.Violations[0].Severity != analyze.SeverityError {
		t.Errorf("severity = %q", decoded.Violations[0].Severity)
	}
}

func TestMarkdown_HeadingsAndTables(t *testing.T) {
	out := sampleReport().Markdown()

	for _, want := range []string{
		"# Identifier length report",
		"## Summary",
		"## Errors",
		"## Warnings",
		"## Suggested renames",
		"| Config | Field path | Identifier | Length | Type |",
		"2026-03-01T09:00:00Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdown_EmptySections(t *testing.T) {
	r := &Report{Title: "Report", Summary: Summary{Passed: true}}
	out := r.Markdown()
	if strings.Count(out, "None.") != 2 {
		t.Errorf("want empty markers for both severity sections:\n%s", out)
	}
}

func TestHTML_WrapsMarkdown(t *testing.T) {
	r := sampleReport()
	r.Title = `Report <with> "chars"`
	out := r.HTML()

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("missing doctype")
	}
	if strings.Contains(out, "<with>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, "## Summary") {
		t.Error("markdown body missing")
	}
}

func TestRender_AllFormats(t *testing.T) {
	r := sampleReport()
	for _, f := range []Format{FormatText, FormatJSON, FormatMarkdown, FormatHTML} {
		out, err := r.Render(f)
		if err != nil {
			t.Errorf("Render(%s): %v", f, err)
		}
		if out == "" {
			t.Errorf("Render(%s) empty", f)
		}
	}
	if _, err := r.Render(Format("csv")); err == nil {
		t.Error("expected error for unknown format")
	}
}
