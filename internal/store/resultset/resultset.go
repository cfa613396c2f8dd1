// Package resultset holds query results that come back either as one set of
// rows or as one set per statement of a batch.
package resultset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

type Kind int

const (
	KindSingle Kind = iota
	KindMulti
)

func (k Kind) String() string {
	if k == KindMulti {
		return "multi"
	}
	return "single"
}

// Result is a tagged result shape. A Single result carries exactly one set;
// a Multi result carries one set per statement, in statement order.
type Result[T any] struct {
	kind Kind
	sets [][]T
}

func Single[T any](rows []T) Result[T] {
	return Result[T]{kind: KindSingle, sets: [][]T{rows}}
}

func Multi[T any](sets ...[]T) Result[T] {
	return Result[T]{kind: KindMulti, sets: sets}
}

func (r Result[T]) Kind() Kind    { return r.kind }
func (r Result[T]) IsMulti() bool { return r.kind == KindMulti }

// Sets returns the sets positionally. A Single result yields one set.
func (r Result[T]) Sets() [][]T { return r.sets }

// Set returns the i-th set, or nil when i is out of range.
func (r Result[T]) Set(i int) []T {
	if i < 0 || i >= len(r.sets) {
		return nil
	}
	return r.sets[i]
}

// Len is the total number of rows across all sets.
func (r Result[T]) Len() int {
	n := 0
	for _, s := range r.sets {
		n += len(s)
	}
	return n
}

// Flatten concatenates every row of every set in order. Never nil.
func (r Result[T]) Flatten() []T {
	out := make([]T, 0, r.Len())
	for _, s := range r.sets {
		out = append(out, s...)
	}
	return out
}

// First returns the first row across all sets.
func (r Result[T]) First() (T, bool) {
	for _, s := range r.sets {
		if len(s) > 0 {
			return s[0], true
		}
	}
	var zero T
	return zero, false
}

// ScanFunc reads the current row of rows into a T.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// Query runs one statement and returns its rows as a Single result.
func Query[T any](ctx context.Context, q dbx.Queryer, scan ScanFunc[T], st dbx.Statement) (Result[T], error) {
	rows, err := readSet(ctx, q, scan, st)
	if err != nil {
		return Result[T]{}, err
	}
	return Single(rows), nil
}

// Collect runs the statements one at a time on q and returns a Multi result
// with one set per statement. Statements that return no rows (DELETE, UPDATE
// without RETURNING) contribute an empty set so positions stay stable.
func Collect[T any](ctx context.Context, q dbx.Queryer, scan ScanFunc[T], stmts ...dbx.Statement) (Result[T], error) {
	sets := make([][]T, 0, len(stmts))
	for i, st := range stmts {
		rows, err := readSet(ctx, q, scan, st)
		if err != nil {
			return Result[T]{}, fmt.Errorf("statement %d: %w", i+1, err)
		}
		sets = append(sets, rows)
	}
	return Multi(sets...), nil
}

func readSet[T any](ctx context.Context, q dbx.Queryer, scan ScanFunc[T], st dbx.Statement) ([]T, error) {
	rows, err := q.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
