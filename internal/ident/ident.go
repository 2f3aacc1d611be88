// Package ident predicts the physical PostgreSQL identifiers a nested schema
// description generates. Everything here is pure: identical input always
// produces identical output.
package ident

import "strings"

// EnumPrefix is prepended to generated enum type names.
const EnumPrefix = "enum_"

// Snake converts a camel or mixed-case field name to lower snake_case.
// An underscore is inserted before an internal uppercase letter, runs of
// uppercase are kept together ("HTMLBody" -> "html_body"), separators become
// underscores, and anything outside [a-z0-9_] is dropped.
func Snake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 && !lastIsUnderscore(&b) {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if isLowerOrDigit(prev) || (isUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == ' ' || r == '.':
			if !lastIsUnderscore(&b) && b.Len() > 0 {
				b.WriteByte('_')
			}
		default:
			// invalid character, dropped
		}
	}

	return strings.Trim(b.String(), "_")
}

func isUpper(r rune) bool        { return r >= 'A' && r <= 'Z' }
func isLowerOrDigit(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') }

func lastIsUnderscore(b *strings.Builder) bool {
	s := b.String()
	return len(s) > 0 && s[len(s)-1] == '_'
}

// Context carries the naming state at one point of a schema tree walk: the
// identifier of the nearest identifier-bearing ancestor and the snake_cased
// path segments accumulated since it.
type Context struct {
	Owner string
	Path  []string
}

// Root returns the context for a top-level collection or global. The slug
// (or its override) becomes the owner identifier with an empty path.
func Root(slug string) Context {
	return Context{Owner: Snake(slug)}
}

// Child returns a copy of c with one more path segment. The segment is
// snake_cased; an explicit override has already been substituted by the
// caller. The receiver is never mutated.
func (c Context) Child(segment string) Context {
	path := make([]string, 0, len(c.Path)+1)
	path = append(path, c.Path...)
	path = append(path, Snake(segment))
	return Context{Owner: c.Owner, Path: path}
}

// joined returns the path segments joined with underscores.
func (c Context) joined() string {
	return strings.Join(c.Path, "_")
}

// ColumnName is the identifier a scalar field at this context maps to.
func (c Context) ColumnName() string {
	return c.joined()
}

// EnumName is the identifier an enum-backed scalar at this context maps to.
func (c Context) EnumName() string {
	return EnumPrefix + c.Owner + "_" + c.joined()
}

// TableName is the identifier an array or block-variant table at this
// context maps to. A descendant walk starts a fresh context with this value
// as its owner.
func (c Context) TableName() string {
	return c.Owner + "_" + c.joined()
}

// Descend returns the context for children of a table-bearing node whose
// table identifier is table: the table becomes the owner and the path resets.
func Descend(table string) Context {
	return Context{Owner: table}
}

// PKName is the conventional primary key constraint name for a table.
func PKName(table string) string {
	return table + "_pkey"
}

// FKName is the conventional foreign key constraint name for a child table's
// parent reference.
func FKName(table, column string) string {
	return table + "_" + column + "_fk"
}

// IndexName is the conventional index name for a column.
func IndexName(table, column string) string {
	return table + "_" + column + "_idx"
}

// Quote wraps an identifier in double quotes, doubling any embedded quote.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
