// Package views renders the server-side pages of the library.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
)

const (
	Books      = "books"
	AddBook    = "addbook"
	UpdateBook = "updatebook"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives. Unused fields stay zero.
type Page struct {
	Title       string
	Base        string
	Search      string
	MessageType string // "success" | "danger" | ""
	Message     string

	Books   []storebooks.Book
	Record  storebooks.Record
	Lookups storebooks.Lookups
}

type choiceList struct {
	Items    []storebooks.Lookup
	Selected int64
}

var funcs = template.FuncMap{
	"choices": func(items []storebooks.Lookup, selected int64) choiceList {
		return choiceList{Items: items, Selected: selected}
	},
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and script.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}
