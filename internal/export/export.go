// Package export snapshots the whole library to object storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
)

const Prefix = "exports/"

// Source is the read side the exporter needs.
type Source interface {
	All(ctx context.Context) ([]storebooks.Book, error)
}

// ObjectStore is satisfied by *s3.S3Client.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

type Snapshot struct {
	ExportedAt time.Time         `json:"exported_at"`
	Count      int               `json:"count"`
	Books      []storebooks.Book `json:"books"`
}

type Exporter struct {
	src   Source
	store ObjectStore
	keep  int
	now   func() time.Time
}

// New returns an exporter that keeps the latest keep snapshots; keep <= 0
// disables pruning.
func New(src Source, store ObjectStore, keep int) *Exporter {
	return &Exporter{src: src, store: store, keep: keep, now: time.Now}
}

// Key names a snapshot taken at t. The fraction is fixed-width so keys sort
// chronologically and two runs in the same second do not collide.
func Key(t time.Time) string {
	return Prefix + "books-" + t.UTC().Format("20060102T150405.000000000Z") + ".json"
}

// Run uploads one snapshot and returns its object key.
func (e *Exporter) Run(ctx context.Context) (string, error) {
	list, err := e.src.All(ctx)
	if err != nil {
		return "", fmt.Errorf("export: read books: %w", err)
	}
	if list == nil {
		list = []storebooks.Book{}
	}

	at := e.now().UTC()
	body, err := json.Marshal(Snapshot{ExportedAt: at, Count: len(list), Books: list})
	if err != nil {
		return "", fmt.Errorf("export: encode: %w", err)
	}

	key := Key(at)
	if err := e.store.PutObject(ctx, key, "application/json", body); err != nil {
		return "", fmt.Errorf("export: upload: %w", err)
	}
	log.Printf("[export] wrote %s (%d books)", key, len(list))

	if e.keep > 0 {
		if err := e.prune(ctx); err != nil {
			// the snapshot itself is stored; pruning retries next run
			log.Printf("[export] prune failed: %v", err)
		}
	}
	return key, nil
}

// DownloadURL returns a short-lived link to the snapshot stored at key.
func (e *Exporter) DownloadURL(ctx context.Context, key string) (string, error) {
	u, err := e.store.PresignGet(ctx, key)
	if err != nil {
		return "", fmt.Errorf("export: presign %s: %w", key, err)
	}
	return u, nil
}

func (e *Exporter) prune(ctx context.Context) error {
	keys, err := e.store.ListKeys(ctx, Prefix+"books-")
	if err != nil {
		return err
	}
	keys = slices.DeleteFunc(keys, func(k string) bool { return !strings.HasSuffix(k, ".json") })
	if len(keys) <= e.keep {
		return nil
	}
	slices.Sort(keys)
	for _, k := range keys[:len(keys)-e.keep] {
		if err := e.store.DeleteObject(ctx, k); err != nil {
			return err
		}
	}
	log.Printf("[export] pruned to latest %d snapshots", e.keep)
	return nil
}
