// Package migration turns an accepted change set into ordered, symmetric
// forward and rollback rename operations.
package migration

import (
	"fmt"
	"sort"

	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/ident"
)

// Operation is one rename with its exact inverse. Applying UpSQL then
// DownSQL leaves the database unchanged.
type Operation struct {
	UpSQL       string `yaml:"up_sql"`
	DownSQL     string `yaml:"down_sql"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"` // object type priority, 1 = first
}

// Generator validates change sets and produces operations.
type Generator struct {
	HardLimit int
}

// NewGenerator returns a Generator enforcing the default 63-byte limit.
func NewGenerator() *Generator {
	return &Generator{HardLimit: 63}
}

// Generate validates the change set and returns its operations sorted by
// object type priority. A change set that fails validation produces no
// operations at all.
func (g *Generator) Generate(set *change.Set) ([]Operation, error) {
	if errs := g.Validate(set); len(errs) > 0 {
		return nil, &InvalidChangeSetError{Errors: errs}
	}

	// Table renames run first, so statements for their columns and
	// constraints must address the table by its new name.
	changes := change.ResolveOwners(set.Changes)
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].ObjectType.Priority() < changes[j].ObjectType.Priority()
	})

	ops := make([]Operation, 0, len(changes))
	for _, c := range changes {
		ops = append(ops, Operation{
			UpSQL:       renameSQL(c, c.OldName, c.NewName),
			DownSQL:     renameSQL(c, c.NewName, c.OldName),
			Description: describe(c),
			Order:       c.ObjectType.Priority(),
		})
	}
	return ops, nil
}

func renameSQL(c change.Change, from, to string) string {
	schema := ident.Quote(c.SchemaName())
	switch c.ObjectType {
	case change.ObjectEnum:
		return fmt.Sprintf("ALTER TYPE %s.%s RENAME TO %s;", schema, ident.Quote(from), ident.Quote(to))
	case change.ObjectTable:
		return fmt.Sprintf("ALTER TABLE %s.%s RENAME TO %s;", schema, ident.Quote(from), ident.Quote(to))
	case change.ObjectColumn:
		return fmt.Sprintf("ALTER TABLE %s.%s RENAME COLUMN %s TO %s;",
			schema, ident.Quote(c.OwnerTable), ident.Quote(from), ident.Quote(to))
	case change.ObjectConstraint:
		return fmt.Sprintf("ALTER TABLE %s.%s RENAME CONSTRAINT %s TO %s;",
			schema, ident.Quote(c.OwnerTable), ident.Quote(from), ident.Quote(to))
	case change.ObjectIndex:
		return fmt.Sprintf("ALTER INDEX %s.%s RENAME TO %s;", schema, ident.Quote(from), ident.Quote(to))
	}
	return ""
}

func describe(c change.Change) string {
	target := string(c.ObjectType)
	if c.OwnerTable != "" {
		target += " on " + c.OwnerTable
	}
	return fmt.Sprintf("rename %s %s -> %s", target, c.OldName, c.NewName)
}
