package db

import (
	"context"
	"errors"
	"testing"
)

func TestMockTransactionCommits(t *testing.T) {
	m := &Mock{}

	err := m.InTransaction(context.Background(), func(tx Executor) error {
		if err := tx.Exec(context.Background(), "ALTER TABLE a RENAME TO b"); err != nil {
			return err
		}
		return tx.Exec(context.Background(), "ALTER TABLE c RENAME TO d")
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if len(m.Executed) != 2 {
		t.Fatalf("expected 2 committed statements, got %d", len(m.Executed))
	}
	if m.Executed[0] != "ALTER TABLE a RENAME TO b" {
		t.Errorf("order lost: %v", m.Executed)
	}
}

func TestMockTransactionDropsOnError(t *testing.T) {
	m := &Mock{}
	boom := errors.New("boom")

	err := m.InTransaction(context.Background(), func(tx Executor) error {
		if err := tx.Exec(context.Background(), "ALTER TABLE a RENAME TO b"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	if len(m.Executed) != 0 {
		t.Errorf("failed transaction committed %d statements", len(m.Executed))
	}
}

func TestMockNestedTransactionSharesBuffer(t *testing.T) {
	m := &Mock{}

	err := m.InTransaction(context.Background(), func(tx Executor) error {
		return tx.InTransaction(context.Background(), func(inner Executor) error {
			return inner.Exec(context.Background(), "ALTER TYPE x RENAME TO y")
		})
	})
	if err != nil {
		t.Fatalf("nested transaction: %v", err)
	}
	if len(m.Executed) != 1 {
		t.Errorf("expected 1 statement, got %d", len(m.Executed))
	}
}

func TestMockQueryRecorded(t *testing.T) {
	m := &Mock{
		QueryFunc: func(sql string, args ...any) ([]map[string]any, error) {
			return []map[string]any{{"matches": int64(1)}}, nil
		},
	}

	rows, err := m.Query(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %v", rows)
	}
	if len(m.Queries) != 1 || m.Queries[0] != "SELECT 1" {
		t.Errorf("query not recorded: %v", m.Queries)
	}
}
