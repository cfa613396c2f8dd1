package books

import (
	"context"
	"database/sql"
	"errors"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
	"github.com/5w1tchy/bookshelf/internal/store/resultset"
)

// selectBooks is the read query every listing shares.
const selectBooks = `
SELECT
	book.id,
	book.author,
	book.title,
	book_type.type,
	book_sub_type.sub_type,
	book_location.location,
	book_language.language
FROM book
INNER JOIN book_type     ON book.book_type_id = book_type.id
INNER JOIN book_sub_type ON book.book_sub_type_id = book_sub_type.id
INNER JOIN book_location ON book.book_location_id = book_location.id
INNER JOIN book_language ON book.book_language_id = book_language.id`

const (
	listSQL = selectBooks + `
LIMIT $1`

	searchSQL = selectBooks + `
WHERE book.author ILIKE $1
   OR book.title ILIKE $1
   OR book_type.type ILIKE $1
   OR book_sub_type.sub_type ILIKE $1
   OR book_language.language ILIKE $1
   OR book_location.location ILIKE $1
ORDER BY book_type.type, book_sub_type.sub_type, book.author`

	allSQL = selectBooks + `
ORDER BY book.id`

	recordSQL = `SELECT id, author, title, book_type_id, book_sub_type_id, book_language_id, book_location_id FROM book WHERE id = $1`
)

// lookupStmts are consumed positionally: type, sub-type, language, location.
var lookupStmts = []dbx.Statement{
	dbx.Stmt(`SELECT id, type FROM book_type ORDER BY id`),
	dbx.Stmt(`SELECT id, sub_type FROM book_sub_type ORDER BY id`),
	dbx.Stmt(`SELECT id, language FROM book_language ORDER BY id`),
	dbx.Stmt(`SELECT id, location FROM book_location ORDER BY id`),
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

// List returns up to ListLimit books in storage order.
func (s *Store) List(ctx context.Context) ([]Book, error) {
	res, err := resultset.Query(ctx, s.db, scanBook, dbx.Stmt(listSQL, ListLimit))
	if err != nil {
		return nil, err
	}
	return res.Flatten(), nil
}

// Search matches term case-insensitively as a substring of any of the six
// text columns. An empty term is a caller error.
func (s *Store) Search(ctx context.Context, term string) ([]Book, error) {
	if normalizeTerm(term) == "" {
		return nil, ErrInvalid
	}
	res, err := resultset.Query(ctx, s.db, scanBook, dbx.Stmt(searchSQL, ContainsPattern(term)))
	if err != nil {
		return nil, err
	}
	return res.Flatten(), nil
}

// All returns every book ordered by id.
func (s *Store) All(ctx context.Context) ([]Book, error) {
	res, err := resultset.Query(ctx, s.db, scanBook, dbx.Stmt(allSQL))
	if err != nil {
		return nil, err
	}
	return res.Flatten(), nil
}

// Lookups reads the four lookup tables.
func (s *Store) Lookups(ctx context.Context) (Lookups, error) {
	var out Lookups
	err := dbx.WithinTxOpts(ctx, s.db, dbx.ReadOnly, func(tx *sql.Tx) error {
		var err error
		out, err = readLookups(ctx, tx)
		return err
	})
	return out, err
}

// Edit reads one book record together with the four lookup tables.
func (s *Store) Edit(ctx context.Context, id int64) (Record, Lookups, error) {
	var (
		rec Record
		lk  Lookups
	)
	err := dbx.WithinTxOpts(ctx, s.db, dbx.ReadOnly, func(tx *sql.Tx) error {
		res, err := resultset.Query(ctx, tx, scanRecord, dbx.Stmt(recordSQL, id))
		if err != nil {
			return err
		}
		first, ok := res.First()
		if !ok {
			return ErrNotFound
		}
		rec = first
		lk, err = readLookups(ctx, tx)
		return err
	})
	if err != nil {
		return Record{}, Lookups{}, err
	}
	return rec, lk, nil
}

func readLookups(ctx context.Context, q dbx.Queryer) (Lookups, error) {
	res, err := resultset.Collect(ctx, q, scanLookup, lookupStmts...)
	if err != nil {
		return Lookups{}, err
	}
	if len(res.Sets()) != len(lookupStmts) {
		return Lookups{}, errors.New("lookup batch returned wrong number of sets")
	}
	return Lookups{
		Types:     res.Set(0),
		SubTypes:  res.Set(1),
		Languages: res.Set(2),
		Locations: res.Set(3),
	}, nil
}
