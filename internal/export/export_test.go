package export

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
)

type fakeSource struct {
	books []storebooks.Book
	err   error
}

func (f fakeSource) All(context.Context) ([]storebooks.Book, error) { return f.books, f.err }

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) PutObject(_ context.Context, key, ct string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	m.types[key] = ct
	return nil
}

func (m *memStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://bucket.example.test/" + key + "?sig=1", nil
}

func TestDownloadURL_PresignsKey(t *testing.T) {
	e := New(fakeSource{}, newMemStore(), 0)
	u, err := e.DownloadURL(t.Context(), "exports/books-1.json")
	if err != nil {
		t.Fatal(err)
	}
	if u != "https://bucket.example.test/exports/books-1.json?sig=1" {
		t.Fatalf("unexpected url %q", u)
	}
}

func TestRun_WritesSnapshot(t *testing.T) {
	store := newMemStore()
	e := New(fakeSource{books: []storebooks.Book{
		{ID: 1, Author: "J.R.R. Tolkien", Title: "The Hobbit", Type: "Fiction", Language: "English"},
	}}, store, 0)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	e.now = func() time.Time { return at }

	key, err := e.Run(t.Context())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "exports/books-20260304T050607.000000000Z.json" {
		t.Fatalf("unexpected key %q", key)
	}
	if store.types[key] != "application/json" {
		t.Fatalf("unexpected content type %q", store.types[key])
	}

	var snap Snapshot
	if err := json.Unmarshal(store.objects[key], &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Count != 1 || snap.Books[0].Title != "The Hobbit" || !snap.ExportedAt.Equal(at) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestRun_EmptyLibraryEncodesEmptyArray(t *testing.T) {
	store := newMemStore()
	e := New(fakeSource{}, store, 0)

	key, err := e.Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(store.objects[key]), `"books":[]`) {
		t.Fatalf("want empty array, got %s", store.objects[key])
	}
}

func TestRun_SourceError(t *testing.T) {
	store := newMemStore()
	boom := errors.New("db down")
	_, err := New(fakeSource{err: boom}, store, 0).Run(t.Context())
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped source error, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestRun_PrunesOldSnapshots(t *testing.T) {
	store := newMemStore()
	e := New(fakeSource{}, store, 2)
	base := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	for i := range 4 {
		at := base.AddDate(0, 0, i)
		e.now = func() time.Time { return at }
		if _, err := e.Run(t.Context()); err != nil {
			t.Fatal(err)
		}
	}
	keys, _ := store.ListKeys(t.Context(), Prefix)
	slices.Sort(keys)
	want := []string{Key(base.AddDate(0, 0, 2)), Key(base.AddDate(0, 0, 3))}
	if !slices.Equal(keys, want) {
		t.Fatalf("got %v want %v", keys, want)
	}
}

func TestKey_SameSecondDoesNotCollide(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	a, b := Key(at), Key(at.Add(time.Millisecond))
	if a == b {
		t.Fatalf("keys collide: %s", a)
	}
	if a > b {
		t.Fatalf("keys out of order: %s > %s", a, b)
	}
}

func TestRun_TwoExportsInOneSecondKeepBoth(t *testing.T) {
	store := newMemStore()
	e := New(fakeSource{}, store, 0)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	for i := range 2 {
		ts := at.Add(time.Duration(i) * 100 * time.Millisecond)
		e.now = func() time.Time { return ts }
		if _, err := e.Run(t.Context()); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.objects) != 2 {
		t.Fatalf("want 2 snapshots, got %d", len(store.objects))
	}
}

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("UTC+4", 4*3600)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2026, 5, 1, 1, 0, 0, 0, loc), time.Date(2026, 5, 1, 3, 0, 0, 0, loc)},
		{"exactly now rolls over", time.Date(2026, 5, 1, 3, 0, 0, 0, loc), time.Date(2026, 5, 2, 3, 0, 0, 0, loc)},
		{"already passed", time.Date(2026, 5, 31, 23, 0, 0, 0, loc), time.Date(2026, 6, 1, 3, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextRun(tc.now, loc, 3, 0); !got.Equal(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string][2]int{
		"04:30": {4, 30},
		"bogus": {3, 0},
		"25:00": {3, 0},
		"07:99": {7, 0},
	}
	for in, want := range cases {
		h, m := parseClock(in)
		if h != want[0] || m != want[1] {
			t.Errorf("parseClock(%q) = %d:%d, want %d:%d", in, h, m, want[0], want[1])
		}
	}
}

type countRunner struct{ calls chan struct{} }

func (c countRunner) Run(context.Context) (string, error) {
	c.calls <- struct{}{}
	return "", nil
}

func TestStartNightly_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := countRunner{calls: make(chan struct{}, 1)}
	StartNightly(ctx, r, "03:00", "UTC")
	cancel()

	select {
	case <-r.calls:
		t.Fatal("runner should not fire before its scheduled time")
	case <-time.After(50 * time.Millisecond):
	}
}
