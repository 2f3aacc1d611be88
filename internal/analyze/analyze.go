// Package analyze walks a schema tree and flags every generated identifier
// that exceeds the configured length thresholds.
package analyze

import (
	"sort"

	"github.com/pgident/pgident/internal/ident"
	"github.com/pgident/pgident/internal/schema"
)

// Severity classifies a violation against the two thresholds.
type Severity string

const (
	SeverityError   Severity = "error"   // over the hard database limit
	SeverityWarning Severity = "warning" // over the soft threshold, under the hard limit
)

// ObjectType is the kind of database object a violated identifier names.
type ObjectType string

const (
	ObjectColumn ObjectType = "column"
	ObjectTable  ObjectType = "table"
	ObjectEnum   ObjectType = "enum"
)

const (
	// DefaultHardLimit is PostgreSQL's NAMEDATALEN-1.
	DefaultHardLimit = 63
	// DefaultMaxDepth bounds traversal; real schemas never nest this deep.
	DefaultMaxDepth = 10
)

// Violation is one identifier found over a threshold. Values are immutable
// once produced.
type Violation struct {
	FieldPath  string     `yaml:"field_path" json:"field_path"`
	Identifier string     `yaml:"identifier" json:"identifier"`
	Length     int        `yaml:"length" json:"length"`
	Severity   Severity   `yaml:"severity" json:"severity"`
	ObjectType ObjectType `yaml:"object_type" json:"object_type"`
	OwnerTable string     `yaml:"owner_table,omitempty" json:"owner_table,omitempty"`
	ConfigName string     `yaml:"config_name" json:"config_name"`
	Level      int        `yaml:"level" json:"level"`
}

// Metrics aggregates traversal statistics for one analysis.
type Metrics struct {
	FieldCount int `yaml:"field_count" json:"field_count"`
	MaxDepth   int `yaml:"max_depth" json:"max_depth"`
}

// Result is the outcome of analyzing a project or single config.
type Result struct {
	Violations []Violation `yaml:"violations" json:"violations"`
	Metrics    Metrics     `yaml:"metrics" json:"metrics"`
}

// Errors returns only the error-severity violations.
func (r *Result) Errors() []Violation {
	return r.filter(SeverityError)
}

// Warnings returns only the warning-severity violations.
func (r *Result) Warnings() []Violation {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}

// Analyzer performs the tree walk. Zero configuration beyond the thresholds;
// safe for concurrent use, each call works on its own state.
type Analyzer struct {
	HardLimit     int
	SoftThreshold int
	MaxDepth      int
}

// New returns an Analyzer with the default limits: hard 63, soft 80% of
// hard, depth 10.
func New() *Analyzer {
	return NewWithLimits(DefaultHardLimit, 0)
}

// NewWithLimits returns an Analyzer with explicit limits. A zero soft
// threshold defaults to 80% of the hard limit.
func NewWithLimits(hard, soft int) *Analyzer {
	if hard <= 0 {
		hard = DefaultHardLimit
	}
	if soft <= 0 {
		soft = hard * 8 / 10
	}
	return &Analyzer{HardLimit: hard, SoftThreshold: soft, MaxDepth: DefaultMaxDepth}
}

// AnalyzeProject analyzes every collection and global, returning the merged
// violation list sorted errors-first, then by descending length.
func (a *Analyzer) AnalyzeProject(p *schema.Project) *Result {
	merged := &Result{}
	for _, cfg := range p.Configs() {
		r := a.AnalyzeConfig(&cfg)
		merged.Violations = append(merged.Violations, r.Violations...)
		merged.Metrics.FieldCount += r.Metrics.FieldCount
		if r.Metrics.MaxDepth > merged.Metrics.MaxDepth {
			merged.Metrics.MaxDepth = r.Metrics.MaxDepth
		}
	}
	sortViolations(merged.Violations)
	return merged
}

// AnalyzeConfig analyzes a single collection or global.
func (a *Analyzer) AnalyzeConfig(cfg *schema.Config) *Result {
	r := &Result{}
	slug := cfg.Slug
	if cfg.DBName != "" {
		slug = cfg.DBName
	}
	// FieldPath stays relative to the config; the config name travels on
	// the violation itself as ConfigName.
	w := &walker{a: a, result: r, config: cfg.Slug}
	w.walkFields(cfg.Fields, ident.Root(slug), "", 1)
	sortViolations(r.Violations)
	return r
}

type walker struct {
	a      *Analyzer
	result *Result
	config string
}

func (w *walker) walkFields(fields []schema.Node, ctx ident.Context, path string, level int) {
	if level > w.a.MaxDepth {
		return
	}
	if level > w.result.Metrics.MaxDepth {
		w.result.Metrics.MaxDepth = level
	}

	for i := range fields {
		f := &fields[i]
		switch f.Kind {
		case schema.KindTabs, schema.KindRow, schema.KindCollapsible:
			// Transparent wrappers: a name contributes a path segment,
			// otherwise children see the parent context unchanged.
			if f.Name == "" {
				w.walkFields(f.Fields, ctx, path, level)
				continue
			}
			w.result.Metrics.FieldCount++
			w.walkFields(f.Fields, ctx.Child(f.Segment()), join(path, f.Name), level+1)

		case schema.KindScalar, schema.KindGroup, schema.KindArray, schema.KindBlocks:
			if f.Name == "" {
				continue // malformed node: skipped, never a violation
			}
			w.result.Metrics.FieldCount++
			w.walkNamed(f, ctx, join(path, f.Name), level)

		default:
			// unknown kind: skipped
		}
	}
}

func (w *walker) walkNamed(f *schema.Node, ctx ident.Context, path string, level int) {
	child := ctx.Child(f.Segment())

	switch f.Kind {
	case schema.KindScalar:
		if f.Enum {
			w.classify(child.EnumName(), ObjectEnum, "", path, level)
		} else {
			w.classify(child.ColumnName(), ObjectColumn, ctx.Owner, path, level)
		}

	case schema.KindGroup:
		// Contributes a path segment, no table of its own.
		w.walkFields(f.Fields, child, path, level+1)

	case schema.KindArray:
		table := child.TableName()
		w.classify(table, ObjectTable, "", path, level)
		w.walkFields(f.Fields, ident.Descend(table), path, level+1)

	case schema.KindBlocks:
		// Each variant forks an independent subtree with its own table.
		for _, b := range f.Blocks {
			if b.Slug == "" {
				continue
			}
			seg := b.Slug
			if b.DBName != "" {
				seg = b.DBName
			}
			table := child.Child(seg).TableName()
			vpath := join(path, b.Slug)
			w.classify(table, ObjectTable, "", vpath, level)
			w.walkFields(b.Fields, ident.Descend(table), vpath, level+1)
		}
	}
}

func (w *walker) classify(identifier string, ot ObjectType, owner, path string, level int) {
	n := len(identifier)
	if n < w.a.SoftThreshold {
		return
	}
	sev := SeverityWarning
	if n > w.a.HardLimit {
		sev = SeverityError
	}
	w.result.Violations = append(w.result.Violations, Violation{
		FieldPath:  path,
		Identifier: identifier,
		Length:     n,
		Severity:   sev,
		ObjectType: ot,
		OwnerTable: owner,
		ConfigName: w.config,
		Level:      level,
	})
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Severity != vs[j].Severity {
			return vs[i].Severity == SeverityError
		}
		return vs[i].Length > vs[j].Length
	})
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
