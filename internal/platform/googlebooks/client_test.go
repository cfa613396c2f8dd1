package googlebooks_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/5w1tchy/bookshelf/internal/platform/googlebooks"
)

func staticKey(k string) googlebooks.KeyFunc { return func() string { return k } }

func TestLookup_ReturnsFirstItemAndAppendsKey(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalItems":2,"items":[{"id":"first","volumeInfo":{"title":"The Hobbit"}},{"id":"second"}]}`))
	}))
	defer srv.Close()

	c := googlebooks.NewClient(staticKey("secret"), googlebooks.WithBaseURL(srv.URL+"/"))
	item, err := c.Lookup(context.Background(), "q=intitle:hobbit")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(item) != `{"id":"first","volumeInfo":{"title":"The Hobbit"}}` {
		t.Fatalf("unexpected item: %s", item)
	}
	if gotQuery != "q=intitle:hobbit&key=secret" {
		t.Fatalf("unexpected upstream query: %s", gotQuery)
	}
}

func TestLookup_ZeroMatchesIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	}))
	defer srv.Close()

	c := googlebooks.NewClient(staticKey("k"), googlebooks.WithBaseURL(srv.URL))
	item, err := c.Lookup(context.Background(), "q=nothing")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if item != nil {
		t.Fatalf("want nil item, got %s", item)
	}
}

func TestLookup_NonOKIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := googlebooks.NewClient(staticKey("bad"), googlebooks.WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "q=x")

	var se *googlebooks.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403, got %d", se.StatusCode)
	}
}

func TestLookup_KeyReadPerCall(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	current := "one"
	c := googlebooks.NewClient(func() string { return current }, googlebooks.WithBaseURL(srv.URL))
	_, _ = c.Lookup(context.Background(), "q=a")
	current = "two"
	_, _ = c.Lookup(context.Background(), "q=a")

	if len(keys) != 2 || keys[0] != "one" || keys[1] != "two" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestLookup_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := googlebooks.NewClient(staticKey("k"), googlebooks.WithBaseURL(url))
	if _, err := c.Lookup(context.Background(), "q=a"); err == nil {
		t.Fatal("expected transport error")
	}
}
