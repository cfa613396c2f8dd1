package dbx

import (
	"context"
	"database/sql"
)

// Queryer lets these helpers work with *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Statement is one SQL text plus its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

func Stmt(query string, args ...any) Statement {
	return Statement{SQL: query, Args: args}
}

// WithinTx runs fn in a transaction (commit on nil, rollback on error).
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return WithinTxOpts(ctx, db, nil, fn)
}

func WithinTxOpts(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReadOnly is used for multi-statement reads that should see one snapshot.
var ReadOnly = &sql.TxOptions{ReadOnly: true}
