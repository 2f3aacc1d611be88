// Package wizard provides the interactive rename review flow: the user
// walks the detected violations, picks or types replacement names, and
// the choices become a change set ready for migration generation.
package wizard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/suggest"
)

// BuildItems pairs violations with their candidates, errors first so
// the user sees the hard failures before the warnings.
func BuildItems(violations []analyze.Violation, suggestions map[string][]suggest.Candidate) []Item {
	items := make([]Item, 0, len(violations))
	for _, sev := range []analyze.Severity{analyze.SeverityError, analyze.SeverityWarning} {
		for _, v := range violations {
			if v.Severity != sev {
				continue
			}
			items = append(items, Item{Violation: v, Candidates: suggestions[v.FieldPath]})
		}
	}
	return items
}

// Run walks the user through the violations and returns the resulting
// change set. Skipped violations produce no change. Quitting before the
// last item is an error.
func Run(items []Item, hardLimit int, schemaName string) (*change.Set, error) {
	if len(items) == 0 {
		return change.NewSet(nil), nil
	}

	m := NewReviewModel(items, hardLimit)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running rename review: %w", err)
	}

	rm := finalModel.(ReviewModel)
	if rm.Cancelled() {
		return nil, fmt.Errorf("cancelled")
	}

	return BuildChangeSet(rm.Decisions(), hardLimit, schemaName), nil
}

// BuildChangeSet converts accepted decisions into a change set. Names that
// collide within a scope get a numeric suffix, so the set never renames two
// objects to the same identifier even when the user typed both.
func BuildChangeSet(decisions []Decision, hardLimit int, schemaName string) *change.Set {
	engine := suggest.NewEngine(hardLimit)
	taken := make(map[string]map[string]bool)
	var changes []change.Change
	for _, d := range decisions {
		if d.NewName == "" {
			continue
		}
		v := d.Item.Violation
		c := change.Change{
			ObjectType: changeType(v.ObjectType),
			OldName:    v.Identifier,
			NewName:    d.NewName,
			OwnerTable: v.OwnerTable,
			Schema:     schemaName,
		}
		scope := c.Scope()
		if taken[scope] == nil {
			taken[scope] = make(map[string]bool)
		}
		c.NewName = engine.Disambiguate(c.NewName, taken[scope])
		taken[scope][c.NewName] = true
		changes = append(changes, c)
	}
	return change.NewSet(changes)
}

func changeType(t analyze.ObjectType) change.ObjectType {
	switch t {
	case analyze.ObjectColumn:
		return change.ObjectColumn
	case analyze.ObjectEnum:
		return change.ObjectEnum
	default:
		return change.ObjectTable
	}
}
