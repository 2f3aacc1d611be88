package migration

import (
	"fmt"
	"strings"

	"github.com/pgident/pgident/internal/change"
)

// Validation error kinds.
const (
	ErrDuplicateTarget = "duplicate_target"
	ErrCircularRename  = "circular_rename"
	ErrNameTooLong     = "name_too_long"
	ErrInvalidChange   = "invalid_change"
)

// ValidationError describes one structural problem in a change set, with the
// offending changes attached so the caller can fix its input.
type ValidationError struct {
	Kind    string
	Message string
	Changes []change.Change
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// InvalidChangeSetError aggregates every validation failure. Generation
// refuses to proceed while any remain.
type InvalidChangeSetError struct {
	Errors []*ValidationError
}

func (e *InvalidChangeSetError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid change set (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks the change set for duplicate targets, circular rename
// pairs, missing fields, and over-limit names. It returns every problem
// found, not just the first.
func (g *Generator) Validate(set *change.Set) []*ValidationError {
	var errs []*ValidationError

	targets := make(map[string][]change.Change) // scope|newName -> changes
	byPair := make(map[string]change.Change)    // scope|old|new -> change

	for _, c := range set.Changes {
		if !c.ObjectType.Valid() || c.OldName == "" || c.NewName == "" {
			errs = append(errs, &ValidationError{
				Kind:    ErrInvalidChange,
				Message: fmt.Sprintf("change %q -> %q has missing or unknown fields", c.OldName, c.NewName),
				Changes: []change.Change{c},
			})
			continue
		}
		if (c.ObjectType == change.ObjectColumn || c.ObjectType == change.ObjectConstraint) && c.OwnerTable == "" {
			errs = append(errs, &ValidationError{
				Kind:    ErrInvalidChange,
				Message: fmt.Sprintf("%s rename %q -> %q has no owner table", c.ObjectType, c.OldName, c.NewName),
				Changes: []change.Change{c},
			})
			continue
		}

		if len(c.OldName) > g.HardLimit || len(c.NewName) > g.HardLimit {
			errs = append(errs, &ValidationError{
				Kind: ErrNameTooLong,
				Message: fmt.Sprintf("%s rename %q -> %q exceeds the %d character limit",
					c.ObjectType, c.OldName, c.NewName, g.HardLimit),
				Changes: []change.Change{c},
			})
		}

		key := c.Scope() + "|" + c.NewName
		targets[key] = append(targets[key], c)
		byPair[c.Scope()+"|"+c.OldName+"|"+c.NewName] = c
	}

	for _, group := range targets {
		if len(group) > 1 {
			errs = append(errs, &ValidationError{
				Kind: ErrDuplicateTarget,
				Message: fmt.Sprintf("%d changes rename to %q in the same %s scope",
					len(group), group[0].NewName, group[0].ObjectType),
				Changes: group,
			})
		}
	}

	reported := make(map[string]bool)
	for _, c := range set.Changes {
		inverseKey := c.Scope() + "|" + c.NewName + "|" + c.OldName
		if inv, ok := byPair[inverseKey]; ok && c.OldName != c.NewName {
			pairKey := c.Scope() + "|" + minMax(c.OldName, c.NewName)
			if reported[pairKey] {
				continue
			}
			reported[pairKey] = true
			errs = append(errs, &ValidationError{
				Kind: ErrCircularRename,
				Message: fmt.Sprintf("renames %q -> %q and %q -> %q form a cycle",
					c.OldName, c.NewName, inv.OldName, inv.NewName),
				Changes: []change.Change{c, inv},
			})
		}
	}

	return errs
}

func minMax(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
