package services

import (
	"context"
	"fmt"
	"reflect"
)

// fakeRow implements Row with a configurable scan.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// rowFromValues returns a Row whose Scan assigns the given values in order.
func rowFromValues(values ...any) fakeRow {
	return fakeRow{scanFunc: func(dest ...any) error {
		return assignValues(dest, values)
	}}
}

// fakeRows implements Rows over an in-memory result set.
type fakeRows struct {
	rows    [][]any
	idx     int
	scanErr error
	err     error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return assignValues(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error {
	return r.err
}

func assignValues(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan expected %d destinations, got %d", len(values), len(dest))
	}
	for i, v := range values {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Ptr {
			return fmt.Errorf("destination %d is not a pointer", i)
		}
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		elem := dv.Elem()
		if !rv.Type().AssignableTo(elem.Type()) {
			if !rv.Type().ConvertibleTo(elem.Type()) {
				return fmt.Errorf("cannot assign %T to destination %d (%s)", v, i, elem.Type())
			}
			rv = rv.Convert(elem.Type())
		}
		elem.Set(rv)
	}
	return nil
}

type fakeCommandTag struct {
	rowsAffected int64
}

func (t fakeCommandTag) RowsAffected() int64 {
	return t.rowsAffected
}

// fakeTx implements Tx with per-method overrides. Unset methods return
// benign zero values so tests only stub what they assert on.
type fakeTx struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return fakeRow{scanFunc: func(dest ...any) error {
		return fmt.Errorf("unexpected QueryRow: %s", sql)
	}}
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return fakeCommandTag{rowsAffected: 1}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// fakeDB implements DB with per-method overrides.
type fakeDB struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	BeginFunc    func(ctx context.Context) (Tx, error)
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if db.QueryFunc != nil {
		return db.QueryFunc(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if db.QueryRowFunc != nil {
		return db.QueryRowFunc(ctx, sql, args...)
	}
	return fakeRow{scanFunc: func(dest ...any) error {
		return fmt.Errorf("unexpected QueryRow: %s", sql)
	}}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if db.ExecFunc != nil {
		return db.ExecFunc(ctx, sql, args...)
	}
	return fakeCommandTag{rowsAffected: 1}, nil
}

func (db *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if db.BeginFunc != nil {
		return db.BeginFunc(ctx)
	}
	return &fakeTx{}, nil
}
