package db

import "context"

// Mock is a test double for Executor. Queries are answered by QueryFunc;
// executed statements are recorded in order. InTransaction buffers
// statements and discards them when fn fails, mirroring a real rollback.
type Mock struct {
	QueryFunc func(sql string, args ...any) ([]map[string]any, error)
	ExecErr   error
	PingErr   error
	TxErr     error // returned by InTransaction before fn runs

	Executed []string
	Queries  []string
	Closed   bool
}

func (m *Mock) Query(_ context.Context, sql string, args ...any) ([]map[string]any, error) {
	m.Queries = append(m.Queries, sql)
	if m.QueryFunc != nil {
		return m.QueryFunc(sql, args...)
	}
	return nil, nil
}

func (m *Mock) Exec(_ context.Context, sql string, _ ...any) error {
	if m.ExecErr != nil {
		return m.ExecErr
	}
	m.Executed = append(m.Executed, sql)
	return nil
}

func (m *Mock) InTransaction(ctx context.Context, fn func(Executor) error) error {
	if m.TxErr != nil {
		return m.TxErr
	}
	buf := &txMock{parent: m}
	if err := fn(buf); err != nil {
		return err // buffered statements dropped
	}
	m.Executed = append(m.Executed, buf.executed...)
	return nil
}

func (m *Mock) Ping(_ context.Context) error { return m.PingErr }

func (m *Mock) Close() { m.Closed = true }

// txMock buffers writes until the enclosing InTransaction commits.
type txMock struct {
	parent   *Mock
	executed []string
}

func (t *txMock) Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	return t.parent.Query(ctx, sql, args...)
}

func (t *txMock) Exec(_ context.Context, sql string, _ ...any) error {
	if t.parent.ExecErr != nil {
		return t.parent.ExecErr
	}
	t.executed = append(t.executed, sql)
	return nil
}

func (t *txMock) InTransaction(_ context.Context, fn func(Executor) error) error {
	return fn(t)
}

func (t *txMock) Ping(_ context.Context) error { return nil }

func (t *txMock) Close() {}
