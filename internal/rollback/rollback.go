// Package rollback builds and executes self-contained plans that undo a
// rename migration.
package rollback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/db"
	"github.com/pgident/pgident/internal/integrity"
	"github.com/pgident/pgident/internal/migration"
)

// Plan is everything needed to undo one change set: pre-checks proving the
// database is in the post-migration state, the reverse-ordered rollback
// statements, and post-checks proving the old names are back.
type Plan struct {
	Set           *change.Set
	Validations   []integrity.Check
	Statements    []Statement
	Verifications []integrity.Check
	GeneratedAt   time.Time
}

// Statement is one rollback rename.
type Statement struct {
	SQL         string
	Description string
}

// Result is the outcome of executing a plan.
type Result struct {
	Executed     int
	Validation   *integrity.Report
	Verification *integrity.Report
	Warnings     []string
}

// Planner builds rollback plans.
type Planner struct {
	Generator *migration.Generator
}

// NewPlanner returns a Planner using the default migration generator.
func NewPlanner() *Planner {
	return &Planner{Generator: migration.NewGenerator()}
}

// Build validates the change set and assembles its rollback plan. The
// statements are the migration's down operations in reverse generation
// order, so dependents are undone before their dependencies.
func (p *Planner) Build(set *change.Set) (*Plan, error) {
	ops, err := p.Generator.Generate(set)
	if err != nil {
		return nil, fmt.Errorf("building rollback plan: %w", err)
	}

	stmts := make([]Statement, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		stmts = append(stmts, Statement{
			SQL:         ops[i].DownSQL,
			Description: "undo: " + ops[i].Description,
		})
	}

	return &Plan{
		Set:           set,
		Validations:   presenceChecks(set),
		Statements:    stmts,
		Verifications: presenceChecks(invert(set)),
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// presenceChecks asserts every NewName in the set exists. Before a rollback
// that proves the database is in the post-migration state; run against the
// inverted set afterwards it proves the old names are back.
func presenceChecks(set *change.Set) []integrity.Check {
	var checks []integrity.Check
	for _, c := range integrity.IdentifierChecks(set) {
		if strings.HasPrefix(c.Name, "new_present:") {
			checks = append(checks, c)
		}
	}
	return checks
}

// invert swaps old and new names in a copy of the set.
func invert(set *change.Set) *change.Set {
	changes := make([]change.Change, len(set.Changes))
	for i, c := range set.Changes {
		c.OldName, c.NewName = c.NewName, c.OldName
		changes[i] = c
	}
	return &change.Set{Version: set.Version, GeneratedAt: set.GeneratedAt, Changes: changes}
}

// Execute runs the plan. Critical validation failures abort before any SQL.
// The statements run inside a single transaction; a mid-batch error leaves
// the database unchanged. Verification failures after a successful commit
// are reported as warnings, never reverted.
func (pl *Plan) Execute(ctx context.Context, exec db.Executor) (*Result, error) {
	result := &Result{}
	runner := &integrity.Runner{DB: exec}

	result.Validation = runner.Run(ctx, pl.Validations)
	if !result.Validation.Passed() {
		return result, fmt.Errorf("rollback pre-validation failed: %s",
			strings.Join(result.Validation.CriticalFailures, "; "))
	}

	err := exec.InTransaction(ctx, func(tx db.Executor) error {
		for _, stmt := range pl.Statements {
			if err := tx.Exec(ctx, stmt.SQL); err != nil {
				return fmt.Errorf("%s: %w", stmt.Description, err)
			}
			result.Executed++
		}
		return nil
	})
	if err != nil {
		result.Executed = 0
		return result, fmt.Errorf("rollback transaction: %w", err)
	}
	slog.Info("rollback applied", "statements", len(pl.Statements), "changes", len(pl.Set.Changes))

	result.Verification = runner.Run(ctx, pl.Verifications)
	for _, f := range result.Verification.CriticalFailures {
		result.Warnings = append(result.Warnings, "post-rollback verification: "+f)
	}

	return result, nil
}

// Script renders the plan as a standalone SQL file any client can execute.
func (pl *Plan) Script() string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- Rollback script\n")
	fmt.Fprintf(&b, "-- Generated at %s\n", pl.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "-- Restores %d identifiers to their pre-migration names\n\n", len(pl.Set.Changes))

	b.WriteString("BEGIN;\n\n")
	for _, stmt := range pl.Statements {
		fmt.Fprintf(&b, "-- %s\n%s\n\n", stmt.Description, stmt.SQL)
	}
	b.WriteString("COMMIT;\n")

	return b.String()
}
