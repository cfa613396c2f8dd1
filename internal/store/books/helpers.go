package books

import (
	"database/sql"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceRe = regexp.MustCompile(`\s+`)

// SanitizeString trims, drops NULs, collapses whitespace and normalizes to NFC
// so that stored text compares the same way search input does.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = norm.NFC.String(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// likeEscaper neutralizes LIKE metacharacters; backslash is the default escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// normalizeTerm trims and NFC-normalizes a search term. Interior whitespace
// is kept so the term matches stored text literally.
func normalizeTerm(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(norm.NFC.String(s))
}

// ContainsPattern builds the ILIKE argument for a substring match.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(normalizeTerm(term)) + "%"
}

func sanitizeInput(in Input) Input {
	in.Author = SanitizeString(in.Author)
	in.Title = SanitizeString(in.Title)
	return in
}

func scanBook(rows *sql.Rows) (Book, error) {
	var b Book
	err := rows.Scan(&b.ID, &b.Author, &b.Title, &b.Type, &b.SubType, &b.Location, &b.Language)
	return b, err
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var r Record
	err := rows.Scan(&r.ID, &r.Author, &r.Title, &r.TypeID, &r.SubTypeID, &r.LanguageID, &r.LocationID)
	return r, err
}

func scanLookup(rows *sql.Rows) (Lookup, error) {
	var l Lookup
	err := rows.Scan(&l.ID, &l.Label)
	return l, err
}

func scanTitle(rows *sql.Rows) (string, error) {
	var t string
	err := rows.Scan(&t)
	return t, err
}
