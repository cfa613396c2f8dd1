package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/bookshelf/internal/api/handlers/books"
	mw "github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/api/router"
	"github.com/5w1tchy/bookshelf/internal/api/views"
	"github.com/5w1tchy/bookshelf/internal/export"
	"github.com/5w1tchy/bookshelf/internal/platform/googlebooks"
	"github.com/5w1tchy/bookshelf/internal/repository/sqlconnect"
	storages3 "github.com/5w1tchy/bookshelf/internal/storage/s3"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/validate"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {

	_ = godotenv.Load()

	if err := validate.Env(); err != nil {
		log.Fatalf("config: %v", err)
	}
	appEnv := os.Getenv("APP_ENV")
	for _, w := range validate.HardeningWarnings(appEnv) {
		log.Printf("[config] warning: %s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB()
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Connected to Postgres")

	store := storebooks.New(db)

	renderer, err := views.New()
	if err != nil {
		log.Fatalf("views: %v", err)
	}

	var exporter books.Exporter
	if s3c, err := storages3.NewFromEnv(ctx); err == nil {
		exp := export.New(store, s3c, validate.EnvInt("EXPORT_KEEP", 14))
		export.StartNightly(ctx, exp,
			validate.EnvDefault("EXPORT_DAILY_AT", "03:00"),
			validate.EnvDefault("EXPORT_TZ", "UTC"))
		exporter = exp
	} else if !errors.Is(err, storages3.ErrNotConfigured) {
		log.Fatalf("s3: %v", err)
	}

	h := books.New(books.Deps{
		Store:    store,
		BookInfo: googlebooks.NewClient(googlebooks.EnvKey("GOOGLE_BOOKS_API_KEY")),
		Views:    renderer,
		Exporter: exporter,
		BasePath: validate.EnvDefault("BASE_PATH", "/books"),
	})

	lookupLimits, err := bookInfoLimits()
	if err != nil {
		log.Fatalf("rate limit: %v", err)
	}

	secureMux := router.Apply(
		router.Router(h, lookupLimits...),
		mw.RequestID,
		mw.Recovery,
		mw.ResponseTime,
		mw.SecurityHeaders,
		mw.BodySizeLimit,
		mw.HPP(mw.BookParams()),
		mw.Compression,
	)

	port := validate.EnvDefault("PORT", ":3000")
	server := &http.Server{
		Addr:              port,
		Handler:           secureMux,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	cert, key := os.Getenv("TLS_CERT"), os.Getenv("TLS_KEY")
	log.Println("Server is running on port:", port)
	if cert != "" && key != "" {
		err = server.ListenAndServeTLS(cert, key)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalln("Error starting server:", err)
	}
}

// bookInfoLimits guards the metadata proxy. With Redis the per-IP bucket and
// the daily quota are shared by every instance; without it a per-instance
// bucket is used and the daily cap is skipped.
func bookInfoLimits() ([]func(http.Handler) http.Handler, error) {
	ratePerSec, err := validate.EnvFloat("BOOKINFO_RATE_PER_SEC", 2)
	if err != nil {
		return nil, err
	}
	burst := validate.EnvInt("BOOKINFO_BURST", 10)
	proxies, err := validate.TrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}

	rdb, err := newRedis()
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		log.Println("Redis not configured; using in-process rate limiting")
		return []func(http.Handler) http.Handler{
			mw.NewLocalRateLimit(ratePerSec, burst, mw.PerIPKey("bookinfo", proxies...)).Middleware,
		}, nil
	}

	// Fail fast if Redis isn't reachable
	if err := validate.PingRedis(rdb, 3*time.Second); err != nil {
		return nil, err
	}
	log.Println("Connected to Redis")

	tb := mw.NewRedisTokenBucket(rdb, ratePerSec, burst, mw.PerIPKey("tb:bookinfo", proxies...))
	sw := mw.NewRedisSlidingWindow(rdb, validate.EnvInt("BOOKINFO_DAILY_LIMIT", 1000), 24*time.Hour, mw.SharedKey("sw:bookinfo"))
	return []func(http.Handler) http.Handler{tb.Middleware, sw.Middleware}, nil
}

// newRedis returns nil when neither Redis setting is present.
func newRedis() (*redis.Client, error) {
	if url := os.Getenv("UPSTASH_REDIS_URL"); url != "" {
		// Path A: full Upstash URL, e.g. rediss://default:<token>@host:port
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, errors.New("invalid UPSTASH_REDIS_URL: " + err.Error())
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return redis.NewClient(opt), nil
	}

	// Path B: split fields
	addr := os.Getenv("REDIS_ADDR") // host:port (no scheme)
	if addr == "" {
		return nil, nil
	}
	opt := &redis.Options{
		Addr:         addr,
		Username:     os.Getenv("REDIS_USER"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if opt.Password != "" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opt), nil
}
