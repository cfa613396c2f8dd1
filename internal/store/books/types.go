package books

import "errors"

var (
	ErrNotFound = errors.New("book not found")
	ErrInvalid  = errors.New("invalid book")
)

// ListLimit caps the plain listing.
const ListLimit = 30

// Book is a book row joined with its four labels.
type Book struct {
	ID       int64  `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	SubType  string `json:"sub_type"`
	Location string `json:"location"`
	Language string `json:"language"`
}

// Record is a raw book row with its foreign keys.
type Record struct {
	ID         int64  `json:"id"`
	Author     string `json:"author"`
	Title      string `json:"title"`
	TypeID     int64  `json:"book_type_id"`
	SubTypeID  int64  `json:"book_sub_type_id"`
	LanguageID int64  `json:"book_language_id"`
	LocationID int64  `json:"book_location_id"`
}

// Lookup is one row of a lookup table.
type Lookup struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type Lookups struct {
	Types     []Lookup
	SubTypes  []Lookup
	Languages []Lookup
	Locations []Lookup
}

// Input is what the add and update forms submit.
type Input struct {
	Author     string
	Title      string
	TypeID     int64
	SubTypeID  int64
	LanguageID int64
	LocationID int64
}
