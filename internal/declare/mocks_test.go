package declare

import (
	"context"

	"github.com/AMAShyp/declare/internal/dbx"
)

type fakeSession struct {
	FetchFn     func(ctx context.Context, query string, args ...any) (*dbx.Table, error)
	ExecFn      func(ctx context.Context, query string, args ...any) error
	ExecRetFn   func(ctx context.Context, query string, args ...any) ([]any, error)
	CheckRefsFn func(ctx context.Context, table, column string, value any) ([]string, error)

	fetchCalls []string
	execCalls  []execCall
}

type execCall struct {
	query string
	args  []any
}

func (f *fakeSession) FetchRows(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
	f.fetchCalls = append(f.fetchCalls, query)
	if f.FetchFn != nil {
		return f.FetchFn(ctx, query, args...)
	}
	return &dbx.Table{}, nil
}

func (f *fakeSession) Execute(ctx context.Context, query string, args ...any) error {
	f.execCalls = append(f.execCalls, execCall{query: query, args: args})
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return nil
}

func (f *fakeSession) ExecuteReturning(ctx context.Context, query string, args ...any) ([]any, error) {
	if f.ExecRetFn != nil {
		return f.ExecRetFn(ctx, query, args...)
	}
	return nil, nil
}

func (f *fakeSession) CheckForeignKeyReferences(ctx context.Context, table, column string, value any) ([]string, error) {
	if f.CheckRefsFn != nil {
		return f.CheckRefsFn(ctx, table, column, value)
	}
	return nil, nil
}

// staticSource hands every caller the same session.
type staticSource struct {
	sess Session
	err  error
}

func (s *staticSource) Acquire(ctx context.Context, sessionKey string) (Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}
