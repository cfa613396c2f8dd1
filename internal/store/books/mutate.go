package books

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
	"github.com/5w1tchy/bookshelf/internal/store/resultset"
)

const (
	insertSQL = `
INSERT INTO book (author, title, book_type_id, book_sub_type_id, book_language_id, book_location_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	updateSQL = `
UPDATE book
SET author = $1, title = $2, book_type_id = $3, book_sub_type_id = $4, book_language_id = $5, book_location_id = $6
WHERE id = $7`

	lockTitleSQL = `SELECT title FROM book WHERE id = $1 FOR UPDATE`
	deleteSQL    = `DELETE FROM book WHERE id = $1`
)

// Insert adds one book and returns its id. Foreign keys are checked by the store.
func (s *Store) Insert(ctx context.Context, in Input) (int64, error) {
	in = sanitizeInput(in)
	var id int64
	err := s.db.QueryRowContext(ctx, insertSQL,
		in.Author, in.Title, in.TypeID, in.SubTypeID, in.LanguageID, in.LocationID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

// Update replaces every mutable field of book id.
func (s *Store) Update(ctx context.Context, id int64, in Input) error {
	in = sanitizeInput(in)
	res, err := s.db.ExecContext(ctx, updateSQL,
		in.Author, in.Title, in.TypeID, in.SubTypeID, in.LanguageID, in.LocationID, id,
	)
	if err != nil {
		return fmt.Errorf("update book %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete reads the title and removes the row in one transaction. The row lock
// makes a concurrent delete of the same id wait and then see ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) (string, error) {
	var title string
	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := resultset.Collect(ctx, tx, scanTitle,
			dbx.Stmt(lockTitleSQL, id),
			dbx.Stmt(deleteSQL, id),
		)
		if err != nil {
			return err
		}
		titles := res.Flatten()
		if len(titles) == 0 {
			return ErrNotFound
		}
		title = titles[0]
		return nil
	})
	if err != nil {
		return "", err
	}
	return title, nil
}
