package s3_test

import (
	"context"
	"errors"
	"testing"

	storages3 "github.com/5w1tchy/bookshelf/internal/storage/s3"
)

func TestNewFromEnv_RequiresBucket(t *testing.T) {
	t.Setenv("AWS_BUCKET", "")
	if _, err := storages3.NewFromEnv(context.Background()); !errors.Is(err, storages3.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestNewFromEnv_StaticCredentials(t *testing.T) {
	t.Setenv("AWS_BUCKET", "library-exports")
	t.Setenv("AWS_REGION", "auto")
	t.Setenv("AWS_ENDPOINT", "http://127.0.0.1:9000")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := storages3.NewFromEnv(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Bucket != "library-exports" || c.Client == nil || c.Presigner == nil {
		t.Fatalf("unexpected client %+v", c)
	}

	url, err := c.PresignGet(context.Background(), "exports/books-1.json")
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url == "" {
		t.Fatal("empty presigned url")
	}
}
