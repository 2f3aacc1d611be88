package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Executor on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and verifies it with a ping. The pool is
// capped at a single connection; later statements may depend on state left
// by earlier ones.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging PostgreSQL: %w", err)
	}
	slog.Debug("connected to PostgreSQL", "database", cfg.ConnConfig.Database)
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return collectRows(rows)
}

func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := p.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}

func (p *Postgres) InTransaction(ctx context.Context, fn func(Executor) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(&txExecutor{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// txExecutor scopes Executor calls to an open transaction.
type txExecutor struct {
	tx pgx.Tx
}

func (t *txExecutor) Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return collectRows(rows)
}

func (t *txExecutor) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}

func (t *txExecutor) InTransaction(ctx context.Context, fn func(Executor) error) error {
	// Already inside a transaction; nested calls share it.
	return fn(t)
}

func (t *txExecutor) Ping(ctx context.Context) error { return nil }

func (t *txExecutor) Close() {}

func collectRows(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var results []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		row := make(map[string]any, len(descs))
		for i, d := range descs {
			row[string(d.Name)] = vals[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return results, nil
}
