// Package change defines the rename change set: the unit of work consumed by
// the migration generator, rollback planner, and integrity checker.
package change

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pgident/pgident/internal/ident"
)

// DefaultSchema is the schema renames target when none is configured.
const DefaultSchema = "public"

// CurrentVersion is the change set file format version.
const CurrentVersion = 1

// ObjectType is the kind of database object being renamed.
type ObjectType string

const (
	ObjectEnum       ObjectType = "enum"
	ObjectTable      ObjectType = "table"
	ObjectColumn     ObjectType = "column"
	ObjectConstraint ObjectType = "constraint"
	ObjectIndex      ObjectType = "index"
)

// Priority orders rename statements so dependencies are renamed before their
// dependents: enums first, indexes last. Unknown types sort after everything.
func (t ObjectType) Priority() int {
	switch t {
	case ObjectEnum:
		return 1
	case ObjectTable:
		return 2
	case ObjectColumn:
		return 3
	case ObjectConstraint:
		return 4
	case ObjectIndex:
		return 5
	}
	return 99
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	return t.Priority() != 99
}

// Change is one old-name to new-name rename.
type Change struct {
	ObjectType ObjectType `yaml:"object_type"`
	OldName    string     `yaml:"old_name"`
	NewName    string     `yaml:"new_name"`
	OwnerTable string     `yaml:"owner_table,omitempty"` // columns and constraints
	Schema     string     `yaml:"schema,omitempty"`
}

// SchemaName returns the change's schema, defaulting to DefaultSchema.
func (c Change) SchemaName() string {
	if c.Schema != "" {
		return c.Schema
	}
	return DefaultSchema
}

// Scope identifies the namespace a change renames within. Two changes with
// equal scope and equal NewName collide.
func (c Change) Scope() string {
	return string(c.ObjectType) + "|" + c.SchemaName() + "|" + c.OwnerTable
}

// ParentRefColumn is the conventional parent reference column on child
// tables generated for array and block fields.
const ParentRefColumn = "parent_id"

// Derived returns the constraint and index renames a table rename implies.
// PostgreSQL leaves dependent object names untouched when a table is
// renamed, so the conventional primary key, the parent reference foreign
// key, and its index must follow in their own statements. Non-table
// changes derive nothing.
func Derived(c Change) []Change {
	if c.ObjectType != ObjectTable {
		return nil
	}
	// Owner is the new table name: the table rename runs first.
	return []Change{
		{
			ObjectType: ObjectConstraint,
			OldName:    ident.PKName(c.OldName),
			NewName:    ident.PKName(c.NewName),
			OwnerTable: c.NewName,
			Schema:     c.Schema,
		},
		{
			ObjectType: ObjectConstraint,
			OldName:    ident.FKName(c.OldName, ParentRefColumn),
			NewName:    ident.FKName(c.NewName, ParentRefColumn),
			OwnerTable: c.NewName,
			Schema:     c.Schema,
		},
		{
			ObjectType: ObjectIndex,
			OldName:    ident.IndexName(c.OldName, ParentRefColumn),
			NewName:    ident.IndexName(c.NewName, ParentRefColumn),
			OwnerTable: c.NewName,
			Schema:     c.Schema,
		},
	}
}

// ResolveOwners returns a copy of changes where the owner of a column or
// constraint renamed by a table change in the same batch is replaced with the
// table's new name. Table renames run first, so dependent statements and
// post-migration checks must address the table by the name it will have.
func ResolveOwners(changes []Change) []Change {
	renamed := make(map[string]string)
	for _, c := range changes {
		if c.ObjectType == ObjectTable {
			renamed[c.SchemaName()+"."+c.OldName] = c.NewName
		}
	}
	out := make([]Change, len(changes))
	copy(out, changes)
	for i := range out {
		if out[i].OwnerTable == "" {
			continue
		}
		if to, ok := renamed[out[i].SchemaName()+"."+out[i].OwnerTable]; ok {
			out[i].OwnerTable = to
		}
	}
	return out
}

// Set is a batch of renames processed together.
type Set struct {
	Version     int       `yaml:"version"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Changes     []Change  `yaml:"changes"`
}

// NewSet wraps changes in a versioned, timestamped set.
func NewSet(changes []Change) *Set {
	return &Set{
		Version:     CurrentVersion,
		GeneratedAt: time.Now().UTC(),
		Changes:     changes,
	}
}

// Load reads a change set from a YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading change set: %w", err)
	}
	s := &Set{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing change set: %w", err)
	}
	if s.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported change set version %d (expected %d)", s.Version, CurrentVersion)
	}
	return s, nil
}

// Save writes the change set to a YAML file.
func (s *Set) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating change set directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling change set: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
