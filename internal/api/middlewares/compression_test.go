package middlewares_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/bookshelf/internal/api/middlewares"
)

func TestCompression_GzipsPages(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>Library</h1>"))
	})

	req := httptest.NewRequest("GET", "/books/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	mw.Compression(handler).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(zr)
	if string(body) != "<h1>Library</h1>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestCompression_SkipsRedirects(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/books/addbook?success=1", http.StatusSeeOther)
	})

	req := httptest.NewRequest("POST", "/books/insertbook", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	mw.Compression(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("want 303, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatal("redirect should not be gzipped")
	}
}

func TestCompression_PlainWithoutAcceptEncoding(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain"))
	})

	rec := httptest.NewRecorder()
	mw.Compression(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/books/", nil))

	if rec.Body.String() != "plain" || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("unexpected response %q %q", rec.Body.String(), rec.Header().Get("Content-Encoding"))
	}
}
