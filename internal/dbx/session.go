package dbx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session is a single stateful database handle owned exclusively by one
// logical user session. All operations on a session are strictly sequential;
// the mutex enforces that no two statements run concurrently on one handle.
//
// Reads and writes share the same resilience policy: on a transient
// connection error the session rolls back best-effort, rebuilds the
// connection from the stored credentials and retries exactly once. A second
// failure, or any permanent error, propagates to the caller.
type Session struct {
	key  string
	cfg  Config
	dial DialFunc

	mu       sync.Mutex
	conn     Conn
	lastUsed time.Time
}

// Key returns the session identifier this connection is bound to.
func (s *Session) Key() string {
	return s.key
}

// touch records that the session was just handed out.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// idleSince reports whether the session was last used before cutoff.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed.Before(cutoff)
}

// ensureLive makes sure the cached handle is usable, dialing lazily on first
// use and rebuilding when the liveness probe fails.
func (s *Session) ensureLive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		return s.rebuildLocked(ctx)
	}
	if _, err := s.conn.Exec(ctx, "SELECT 1"); err != nil {
		return s.rebuildLocked(ctx)
	}
	return nil
}

// rebuildLocked discards the cached handle and dials a new one. Caller holds
// s.mu.
func (s *Session) rebuildLocked(ctx context.Context) error {
	if s.conn != nil {
		_ = s.conn.Close(ctx)
		s.conn = nil
	}
	conn, err := s.dial(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	s.conn = conn
	return nil
}

// rollbackLocked issues a best-effort ROLLBACK on the current handle.
// Outside an open transaction this is a no-op on the server; errors are
// ignored by design of the recovery path.
func (s *Session) rollbackLocked(ctx context.Context) {
	if s.conn == nil {
		return
	}
	_, _ = s.conn.Exec(ctx, "ROLLBACK")
}

// close tears down the connection. Errors are swallowed; closing never
// raises.
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close(ctx)
		s.conn = nil
	}
}

// FetchRows executes a parametrized read and returns the tabular result.
// Column names come from the query's result metadata; a query matching zero
// rows yields a valid empty table.
func (s *Session) FetchRows(ctx context.Context, query string, args ...any) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		if err := s.rebuildLocked(ctx); err != nil {
			return nil, err
		}
	}

	tbl, err := s.queryTableLocked(ctx, query, args)
	if err == nil {
		return tbl, nil
	}
	if !IsTransient(err) {
		s.rollbackLocked(ctx)
		return nil, err
	}

	s.rollbackLocked(ctx)
	if rerr := s.rebuildLocked(ctx); rerr != nil {
		return nil, rerr
	}
	return s.queryTableLocked(ctx, query, args)
}

func (s *Session) queryTableLocked(ctx context.Context, query string, args []any) (*Table, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	tbl := &Table{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(vals))
		copy(row, vals)
		tbl.Rows = append(tbl.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Execute runs a write inside an implicit transaction, committed on success.
func (s *Session) Execute(ctx context.Context, query string, args ...any) error {
	_, err := s.execute(ctx, query, args, false)
	return err
}

// ExecuteReturning runs a write and hands back the first result row of its
// RETURNING clause.
func (s *Session) ExecuteReturning(ctx context.Context, query string, args ...any) ([]any, error) {
	return s.execute(ctx, query, args, true)
}

func (s *Session) execute(ctx context.Context, query string, args []any, returning bool) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		if err := s.rebuildLocked(ctx); err != nil {
			return nil, err
		}
	}

	row, err := s.executeOnceLocked(ctx, query, args, returning)
	if err == nil {
		return row, nil
	}
	if !IsTransient(err) {
		return nil, err
	}

	s.rollbackLocked(ctx)
	if rerr := s.rebuildLocked(ctx); rerr != nil {
		return nil, rerr
	}
	return s.executeOnceLocked(ctx, query, args, returning)
}

func (s *Session) executeOnceLocked(ctx context.Context, query string, args []any, returning bool) ([]any, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) // no-op once committed

	var row []any
	if returning {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if rows.Next() {
			vals, verr := rows.Values()
			if verr != nil {
				rows.Close()
				return nil, verr
			}
			row = make([]any, len(vals))
			copy(row, vals)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return row, nil
}
