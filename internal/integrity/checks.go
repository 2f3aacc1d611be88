package integrity

import (
	"fmt"

	"github.com/pgident/pgident/internal/change"
)

// identifierMatchesQuery counts appearances of an identifier across the
// table, column, and enum namespaces of a schema.
const identifierMatchesQuery = `
SELECT
    (SELECT COUNT(*) FROM information_schema.tables
        WHERE table_schema = $1 AND table_name = $2)
  + (SELECT COUNT(*) FROM information_schema.columns
        WHERE table_schema = $1 AND column_name = $2)
  + (SELECT COUNT(*) FROM pg_type t
        JOIN pg_namespace n ON n.oid = t.typnamespace
        WHERE n.nspname = $1 AND t.typname = $2 AND t.typtype = 'e')
  AS matches`

// PreMigrationChecks returns the baseline checks run before a migration.
// They are informational: they record counts for later comparison and only
// connectivity and schema existence can fail, non-critically at that point.
func PreMigrationChecks(schemaName string) []Check {
	return []Check{
		{
			Name:        "connectivity",
			Description: "database answers a trivial query",
			Query:       "SELECT 1 AS one",
			Validate: func(rows []map[string]any) (bool, string) {
				if _, ok := singleCount(rows, "one"); !ok {
					return false, "no result row"
				}
				return true, ""
			},
			Critical: true,
		},
		{
			Name:        "schema_exists",
			Description: "target schema is present",
			Query:       "SELECT COUNT(*) AS matches FROM information_schema.schemata WHERE schema_name = $1",
			Args:        []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, ok := singleCount(rows, "matches")
				if !ok || n == 0 {
					return false, fmt.Sprintf("schema %q not found", schemaName)
				}
				return true, ""
			},
			Critical: true,
		},
		{
			Name:        "baseline_table_count",
			Description: "records the pre-migration table count",
			Query:       "SELECT COUNT(*) AS tables FROM information_schema.tables WHERE table_schema = $1",
			Args:        []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, _ := singleCount(rows, "tables")
				return true, fmt.Sprintf("%d tables", n)
			},
		},
		{
			Name:        "baseline_enum_count",
			Description: "records the pre-migration enum type count",
			Query: `SELECT COUNT(*) AS enums FROM pg_type t
				JOIN pg_namespace n ON n.oid = t.typnamespace
				WHERE n.nspname = $1 AND t.typtype = 'e'`,
			Args: []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, _ := singleCount(rows, "enums")
				return true, fmt.Sprintf("%d enum types", n)
			},
		},
		{
			Name:        "baseline_row_estimate",
			Description: "records the pre-migration live row estimate",
			Query:       "SELECT COALESCE(SUM(n_live_tup), 0)::bigint AS live_rows FROM pg_stat_user_tables WHERE schemaname = $1",
			Args:        []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, _ := singleCount(rows, "live_rows")
				return true, fmt.Sprintf("~%d live rows", n)
			},
		},
	}
}

// PostMigrationChecks returns the critical checks run after a migration.
func PostMigrationChecks(schemaName string) []Check {
	return []Check{
		{
			Name:        "table_count_positive",
			Description: "renames must not drop tables",
			Query:       "SELECT COUNT(*) AS tables FROM information_schema.tables WHERE table_schema = $1",
			Args:        []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, ok := singleCount(rows, "tables")
				if !ok || n <= 0 {
					return false, fmt.Sprintf("table count = %d", n)
				}
				return true, fmt.Sprintf("%d tables", n)
			},
			Critical: true,
		},
		{
			Name:        "row_counts_non_negative",
			Description: "live row estimates remain sane",
			Query:       "SELECT COALESCE(SUM(n_live_tup), 0)::bigint AS live_rows FROM pg_stat_user_tables WHERE schemaname = $1",
			Args:        []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, ok := singleCount(rows, "live_rows")
				if !ok || n < 0 {
					return false, fmt.Sprintf("row estimate = %d", n)
				}
				return true, fmt.Sprintf("~%d live rows", n)
			},
			Critical: true,
		},
		{
			Name:        "index_validity",
			Description: "every index must still be valid after renames",
			Query: `SELECT COUNT(*) AS index_count,
				COUNT(*) FILTER (WHERE i.indisvalid) AS valid_indexes
				FROM pg_index i
				JOIN pg_class c ON c.oid = i.indexrelid
				JOIN pg_namespace n ON n.oid = c.relnamespace
				WHERE n.nspname = $1`,
			Args: []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				if len(rows) != 1 {
					return false, "no result row"
				}
				total, _ := asInt64(rows[0]["index_count"])
				valid, _ := asInt64(rows[0]["valid_indexes"])
				if valid != total {
					return false, fmt.Sprintf("%d of %d indexes valid", valid, total)
				}
				return true, fmt.Sprintf("%d indexes valid", total)
			},
			Critical: true,
		},
		{
			Name:        "enum_types_present",
			Description: "enum types survived the rename",
			Query: `SELECT COUNT(*) AS enums FROM pg_type t
				JOIN pg_namespace n ON n.oid = t.typnamespace
				WHERE n.nspname = $1 AND t.typtype = 'e'`,
			Args: []any{schemaName},
			Validate: func(rows []map[string]any) (bool, string) {
				n, ok := singleCount(rows, "enums")
				if !ok || n <= 0 {
					return false, "no enum types found"
				}
				return true, fmt.Sprintf("%d enum types", n)
			},
			Critical: true,
		},
	}
}

// IdentifierChecks asserts, for every change, that the old identifier is
// gone and the new one exists. All are critical. The checks describe the
// post-migration catalog, so columns and constraints of a table renamed in
// the same set are looked up under the table's new name.
func IdentifierChecks(set *change.Set) []Check {
	var checks []Check
	for _, c := range change.ResolveOwners(set.Changes) {
		c := c
		checks = append(checks,
			Check{
				Name:        fmt.Sprintf("old_absent:%s:%s", c.ObjectType, c.OldName),
				Description: "the old identifier must no longer exist",
				Query:       absenceQuery(c),
				Args:        absenceArgs(c, c.OldName),
				Validate: func(rows []map[string]any) (bool, string) {
					n, ok := singleCount(rows, "matches")
					if !ok {
						return false, "no result row"
					}
					if n != 0 {
						return false, fmt.Sprintf("%q still has %d matches", c.OldName, n)
					}
					return true, ""
				},
				Critical: true,
			},
			Check{
				Name:        fmt.Sprintf("new_present:%s:%s", c.ObjectType, c.NewName),
				Description: "the new identifier must exist",
				Query:       presenceQuery(c),
				Args:        presenceArgs(c, c.NewName),
				Validate: func(rows []map[string]any) (bool, string) {
					n, ok := singleCount(rows, "matches")
					if !ok {
						return false, "no result row"
					}
					if n == 0 {
						return false, fmt.Sprintf("%q not found", c.NewName)
					}
					return true, ""
				},
				Critical: true,
			},
		)
	}
	return checks
}

// absenceQuery scans broadly: for table, column, and enum renames the old
// name must be gone from all three namespaces, catching strays left by a
// partially applied migration.
func absenceQuery(c change.Change) string {
	switch c.ObjectType {
	case change.ObjectConstraint:
		return constraintMatchesQuery
	case change.ObjectIndex:
		return indexMatchesQuery
	}
	return identifierMatchesQuery
}

func absenceArgs(c change.Change, name string) []any {
	if c.ObjectType == change.ObjectConstraint {
		return []any{c.SchemaName(), name, c.OwnerTable}
	}
	return []any{c.SchemaName(), name}
}

// presenceQuery is scoped to the renamed object's own namespace.
func presenceQuery(c change.Change) string {
	switch c.ObjectType {
	case change.ObjectTable:
		return "SELECT COUNT(*) AS matches FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2"
	case change.ObjectColumn:
		return "SELECT COUNT(*) AS matches FROM information_schema.columns WHERE table_schema = $1 AND column_name = $2 AND table_name = $3"
	case change.ObjectEnum:
		return `SELECT COUNT(*) AS matches FROM pg_type t
			JOIN pg_namespace n ON n.oid = t.typnamespace
			WHERE n.nspname = $1 AND t.typname = $2 AND t.typtype = 'e'`
	case change.ObjectConstraint:
		return constraintMatchesQuery
	case change.ObjectIndex:
		return indexMatchesQuery
	}
	return identifierMatchesQuery
}

func presenceArgs(c change.Change, name string) []any {
	switch c.ObjectType {
	case change.ObjectColumn, change.ObjectConstraint:
		return []any{c.SchemaName(), name, c.OwnerTable}
	}
	return []any{c.SchemaName(), name}
}

const constraintMatchesQuery = `SELECT COUNT(*) AS matches FROM pg_constraint con
	JOIN pg_class rel ON rel.oid = con.conrelid
	JOIN pg_namespace n ON n.oid = rel.relnamespace
	WHERE n.nspname = $1 AND con.conname = $2 AND rel.relname = $3`

const indexMatchesQuery = "SELECT COUNT(*) AS matches FROM pg_indexes WHERE schemaname = $1 AND indexname = $2"
