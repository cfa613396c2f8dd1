package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/5w1tchy/bookshelf/internal/api/handlers/books"
	"github.com/5w1tchy/bookshelf/internal/api/router"
	"github.com/5w1tchy/bookshelf/internal/api/views"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
)

type emptyStore struct{}

func (emptyStore) List(context.Context) ([]storebooks.Book, error)           { return nil, nil }
func (emptyStore) Search(context.Context, string) ([]storebooks.Book, error) { return nil, nil }
func (emptyStore) Lookups(context.Context) (storebooks.Lookups, error) {
	return storebooks.Lookups{}, nil
}
func (emptyStore) Edit(context.Context, int64) (storebooks.Record, storebooks.Lookups, error) {
	return storebooks.Record{}, storebooks.Lookups{}, storebooks.ErrNotFound
}
func (emptyStore) Insert(context.Context, storebooks.Input) (int64, error) { return 1, nil }
func (emptyStore) Update(context.Context, int64, storebooks.Input) error   { return nil }
func (emptyStore) Delete(context.Context, int64) (string, error)           { return "", storebooks.ErrNotFound }

type nullInfo struct{}

func (nullInfo) Lookup(context.Context, string) (json.RawMessage, error) { return nil, nil }

func newRouter(t *testing.T, lookupMW ...func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	v, err := views.New()
	if err != nil {
		t.Fatal(err)
	}
	h := books.New(books.Deps{Store: emptyStore{}, BookInfo: nullInfo{}, Views: v})
	return router.Router(h, lookupMW...)
}

func TestRootRedirectsToBooks(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/books/" {
		t.Fatalf("unexpected %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestStaticIsServed(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/books/static/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}

func TestLookupMiddlewareScopedToBookInfo(t *testing.T) {
	var hits []string
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits = append(hits, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	h := newRouter(t, mark)

	for _, p := range []string{"/books/", "/books/getbookinfo?bookquery=q=x", "/books/addbook"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}
	if len(hits) != 1 || hits[0] != "/books/getbookinfo" {
		t.Fatalf("middleware ran for %v", hits)
	}
}

func TestApply_FirstIsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := router.Apply(http.NotFoundHandler(), tag("a"), tag("b"), tag("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if strings.Join(order, "") != "abc" {
		t.Fatalf("order %v", order)
	}
}
