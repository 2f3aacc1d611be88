// Package pipeline runs the full schema analysis flow: walk the
// project, collect violations, optionally compute rename suggestions,
// and assemble a report ready for rendering.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/report"
	"github.com/pgident/pgident/internal/schema"
	"github.com/pgident/pgident/internal/suggest"
)

// Options controls a pipeline run. The zero value uses the default
// limits and produces a text report without suggestions.
type Options struct {
	HardLimit      int
	SoftThreshold  int
	MaxDepth       int
	Suggest        bool
	FailOnWarnings bool
	Title          string
}

// Pipeline is a configured analysis run over a schema project.
type Pipeline struct {
	opts     Options
	analyzer *analyze.Analyzer
	engine   *suggest.Engine
}

func New(opts Options) *Pipeline {
	hard := opts.HardLimit
	if hard <= 0 {
		hard = analyze.DefaultHardLimit
	}
	a := analyze.NewWithLimits(hard, opts.SoftThreshold)
	if opts.MaxDepth > 0 {
		a.MaxDepth = opts.MaxDepth
	}
	return &Pipeline{opts: opts, analyzer: a, engine: suggest.NewEngine(hard)}
}

// Run analyzes the project and returns the assembled report. Passed is
// false when any error violation exists, or when FailOnWarnings is set
// and at least one warning exists.
func (p *Pipeline) Run(project *schema.Project) *report.Report {
	start := time.Now()

	res := p.analyzer.AnalyzeProject(project)

	var suggestions map[string][]suggest.Candidate
	if p.opts.Suggest && len(res.Violations) > 0 {
		suggestions = p.engine.SuggestAll(res.Violations)
	}

	errs := len(res.Errors())
	warns := len(res.Warnings())
	passed := errs == 0 && !(p.opts.FailOnWarnings && warns > 0)

	slog.Debug("analysis complete",
		"configs", len(project.Configs()),
		"fields", res.Metrics.FieldCount,
		"errors", errs,
		"warnings", warns,
		"duration", time.Since(start))

	title := p.opts.Title
	if title == "" {
		title = "Identifier length report"
	}

	return &report.Report{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Summary: report.Summary{
			Configs:  len(project.Configs()),
			Fields:   res.Metrics.FieldCount,
			MaxDepth: res.Metrics.MaxDepth,
			Errors:   errs,
			Warnings: warns,
			Duration: time.Since(start),
			Passed:   passed,
		},
		Violations:  res.Violations,
		Suggestions: suggestions,
	}
}
