// Package suggest generates shortened replacement identifiers for length
// violations and scores them for quality.
package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgident/pgident/internal/analyze"
)

// abbreviations maps long words to accepted short forms, applied word-by-word
// on the snake_case identifier.
var abbreviations = map[string]string{
	"administration": "admin",
	"application":    "app",
	"attribute":      "attr",
	"attribution":    "attr",
	"background":     "bg",
	"button":         "btn",
	"configuration":  "config",
	"coordinates":    "coords",
	"description":    "desc",
	"destination":    "dest",
	"directory":      "dir",
	"document":       "doc",
	"image":          "img",
	"information":    "info",
	"internationalization": "i18n",
	"language":       "lang",
	"management":     "mgmt",
	"maximum":        "max",
	"message":        "msg",
	"minimum":        "min",
	"navigation":     "nav",
	"number":         "num",
	"organization":   "org",
	"paragraph":      "para",
	"parameter":      "param",
	"position":       "pos",
	"preference":     "pref",
	"reference":      "ref",
	"selection":      "sel",
	"testimonial":    "testim",
	"transaction":    "txn",
}

// Candidate is one proposed replacement identifier with its scores.
type Candidate struct {
	Value           string  `yaml:"value" json:"value"`
	LengthReduction float64 `yaml:"length_reduction" json:"length_reduction"`
	Similarity      float64 `yaml:"similarity" json:"similarity"`
	Quality         float64 `yaml:"quality" json:"quality"`
}

// Engine generates and ranks candidates. The scoring weights are tunable;
// only the relative ordering they induce is contractual.
type Engine struct {
	HardLimit     int
	MaxCandidates int

	reductionWeight  float64
	similarityWeight float64
}

// NewEngine returns an Engine for the given hard identifier limit.
func NewEngine(hardLimit int) *Engine {
	if hardLimit <= 0 {
		hardLimit = analyze.DefaultHardLimit
	}
	return &Engine{
		HardLimit:        hardLimit,
		MaxCandidates:    3,
		reductionWeight:  0.7,
		similarityWeight: 0.3,
	}
}

// Suggest generates up to MaxCandidates ranked candidates for a violation.
// Every candidate is non-empty, strictly shorter than the violated
// identifier, and within the hard limit.
func (e *Engine) Suggest(v analyze.Violation) []Candidate {
	original := v.Identifier
	seen := map[string]bool{original: true}
	var values []string

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		values = append(values, s)
	}

	abbreviated := abbreviate(original)
	add(abbreviated)
	add(e.truncate(original))
	add(e.truncate(abbreviated))

	var out []Candidate
	for _, val := range values {
		if len(val) >= len(original) || len(val) > e.HardLimit {
			continue // over the limit or no improvement: disqualified
		}
		out = append(out, e.score(original, val))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quality != out[j].Quality {
			return out[i].Quality > out[j].Quality
		}
		return len(out[i].Value) < len(out[j].Value)
	})
	if len(out) > e.MaxCandidates {
		out = out[:e.MaxCandidates]
	}
	return out
}

// Recommend returns the best candidate for a violation, if any exists.
func (e *Engine) Recommend(v analyze.Violation) (Candidate, bool) {
	cands := e.Suggest(v)
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// SuggestAll maps each violation's field path to its candidates. Violations
// with no viable candidate are present with a nil slice so callers can
// distinguish "not analyzed" from "nothing found". Top candidates are kept
// unique within a (object type, owner table) scope: two columns of one table
// shortening to the same name would otherwise both be recommended it.
func (e *Engine) SuggestAll(violations []analyze.Violation) map[string][]Candidate {
	out := make(map[string][]Candidate, len(violations))
	taken := make(map[string]map[string]bool)
	for _, v := range violations {
		cands := e.Suggest(v)
		if len(cands) > 0 {
			scope := string(v.ObjectType) + "|" + v.OwnerTable
			if taken[scope] == nil {
				taken[scope] = make(map[string]bool)
			}
			top := e.Disambiguate(cands[0].Value, taken[scope])
			if top != cands[0].Value {
				cands[0] = e.score(v.Identifier, top)
			}
			taken[scope][top] = true
		}
		out[v.FieldPath] = cands
	}
	return out
}

// Disambiguate appends a numeric suffix until value is absent from taken,
// trimming as needed to stay within the hard limit.
func (e *Engine) Disambiguate(value string, taken map[string]bool) string {
	if !taken[value] {
		return value
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		base := value
		if len(base)+len(suffix) > e.HardLimit {
			base = strings.TrimRight(base[:e.HardLimit-len(suffix)], "_")
		}
		cand := base + suffix
		if !taken[cand] {
			return cand
		}
	}
}

func (e *Engine) score(original, candidate string) Candidate {
	reduction := float64(len(original)-len(candidate)) / float64(len(original))

	origTokens := strings.Split(original, "_")
	candTokens := make(map[string]bool)
	for _, t := range strings.Split(candidate, "_") {
		candTokens[t] = true
	}
	shared := 0
	for _, t := range origTokens {
		if candTokens[t] {
			shared++
		}
	}
	similarity := float64(shared) / float64(len(origTokens))

	return Candidate{
		Value:           candidate,
		LengthReduction: reduction,
		Similarity:      similarity,
		Quality:         e.reductionWeight*reduction + e.similarityWeight*similarity,
	}
}

// abbreviate substitutes known long words with their short forms.
func abbreviate(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if short, ok := abbreviations[w]; ok {
			words[i] = short
		}
	}
	return strings.Join(words, "_")
}

// truncate shortens the final segment so the identifier fits the hard limit.
func (e *Engine) truncate(s string) string {
	if len(s) <= e.HardLimit {
		return s
	}
	return strings.TrimRight(s[:e.HardLimit], "_")
}
