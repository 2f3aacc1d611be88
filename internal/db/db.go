// Package db is the narrow database contract the rest of the tool depends
// on: run raw SQL, return rows, and execute inside a transaction.
package db

import "context"

// Executor runs SQL against a live database. Implementations are not
// required to be safe for concurrent use; callers issue statements
// sequentially.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
	Exec(ctx context.Context, sql string, args ...any) error
	// InTransaction runs fn inside a single transaction. A non-nil error
	// from fn rolls every statement back.
	InTransaction(ctx context.Context, fn func(Executor) error) error
	Ping(ctx context.Context) error
	Close()
}
