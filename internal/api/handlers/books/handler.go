// Package books serves the library pages and the small JSON endpoints they
// call from script.
package books

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/5w1tchy/bookshelf/internal/api/views"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
)

// Store is the persistence the handlers need; *storebooks.Store satisfies it.
type Store interface {
	List(ctx context.Context) ([]storebooks.Book, error)
	Search(ctx context.Context, term string) ([]storebooks.Book, error)
	Lookups(ctx context.Context) (storebooks.Lookups, error)
	Edit(ctx context.Context, id int64) (storebooks.Record, storebooks.Lookups, error)
	Insert(ctx context.Context, in storebooks.Input) (int64, error)
	Update(ctx context.Context, id int64, in storebooks.Input) error
	Delete(ctx context.Context, id int64) (string, error)
}

// BookInfo proxies metadata lookups; *googlebooks.Client satisfies it.
type BookInfo interface {
	Lookup(ctx context.Context, rawQuery string) (json.RawMessage, error)
}

type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, p views.Page) error
}

// Exporter uploads a library snapshot and returns its object key;
// *export.Exporter satisfies it.
type Exporter interface {
	Run(ctx context.Context) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type Deps struct {
	Store    Store
	BookInfo BookInfo
	Views    Renderer
	Exporter Exporter // nil disables /exportbooks
	BasePath string   // defaults to /books
}

type Handler struct {
	store    Store
	info     BookInfo
	views    Renderer
	exporter Exporter
	base     string
}

func New(d Deps) *Handler {
	base := strings.TrimRight(d.BasePath, "/")
	if base == "" {
		base = "/books"
	}
	return &Handler{
		store:    d.Store,
		info:     d.BookInfo,
		views:    d.Views,
		exporter: d.Exporter,
		base:     base,
	}
}

func (h *Handler) Base() string { return h.base }

// Register mounts every route under the base path. lookupMW wraps only the
// metadata proxy, which is the one route spending an external quota.
func (h *Handler) Register(mux *http.ServeMux, lookupMW ...func(http.Handler) http.Handler) {
	var lookup http.Handler = http.HandlerFunc(h.bookInfo)
	for i := len(lookupMW) - 1; i >= 0; i-- {
		lookup = lookupMW[i](lookup)
	}

	b := h.base
	mux.HandleFunc("GET "+b+"/{$}", h.list)
	mux.HandleFunc("GET "+b+"/searchbooks", h.search)
	mux.Handle("GET "+b+"/getbookinfo", lookup)
	mux.HandleFunc("GET "+b+"/addbook", h.addForm)
	mux.HandleFunc("POST "+b+"/insertbook", h.insert)
	mux.HandleFunc("GET "+b+"/updatebook", h.updateForm)
	mux.HandleFunc("POST "+b+"/updatebookbyid/{id}", h.update)
	mux.HandleFunc("DELETE "+b+"/deletebook/{id}", h.del)
	if h.exporter != nil {
		mux.HandleFunc("POST "+b+"/exportbooks", h.export)
	}

	// Keep bare base -> base/
	mux.HandleFunc("GET "+b, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, b+"/", http.StatusMovedPermanently)
	})
}
