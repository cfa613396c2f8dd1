package validate

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Env validates required configuration. Fail-fast on bad config.
func Env() error {
	if os.Getenv("DATABASE_URL") == "" {
		return errors.New("DATABASE_URL not set")
	}
	if err := envMinUint("DB_MAX_OPEN_CONNS", 1); err != nil {
		return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	if err := envMinUint("BOOKINFO_BURST", 1); err != nil {
		return fmt.Errorf("BOOKINFO_BURST: %w", err)
	}
	if err := envMinUint("BOOKINFO_DAILY_LIMIT", 1); err != nil {
		return fmt.Errorf("BOOKINFO_DAILY_LIMIT: %w", err)
	}
	if err := envMinUint("EXPORT_KEEP", 1); err != nil {
		return fmt.Errorf("EXPORT_KEEP: %w", err)
	}
	if _, err := EnvFloat("BOOKINFO_RATE_PER_SEC", 2); err != nil {
		return fmt.Errorf("BOOKINFO_RATE_PER_SEC: %w", err)
	}
	if _, err := TrustedProxies(os.Getenv("TRUSTED_PROXIES")); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if v := os.Getenv("EXPORT_DAILY_AT"); v != "" {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("EXPORT_DAILY_AT: want HH:MM, got %q", v)
		}
	}
	return nil
}

// HardeningWarnings returns non-fatal warnings worth logging on startup.
func HardeningWarnings(appEnv string) []string {
	var warns []string

	if os.Getenv("GOOGLE_BOOKS_API_KEY") == "" {
		warns = append(warns, "GOOGLE_BOOKS_API_KEY not set; /getbookinfo will run against the anonymous quota")
	}
	if os.Getenv("AWS_BUCKET") == "" {
		warns = append(warns, "AWS_BUCKET not set; library export disabled")
	}

	if strings.EqualFold(appEnv, "production") {
		if os.Getenv("TLS_CERT") == "" || os.Getenv("TLS_KEY") == "" {
			warns = append(warns, "TLS_CERT/TLS_KEY not set; serving plain HTTP in production")
		}
		if u := os.Getenv("UPSTASH_REDIS_URL"); u != "" && strings.HasPrefix(u, "redis://") {
			warns = append(warns, "UPSTASH_REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if os.Getenv("UPSTASH_REDIS_URL") == "" && os.Getenv("REDIS_ADDR") == "" {
			warns = append(warns, "no Redis configured; rate limits are per instance only")
		}
	}
	return warns
}

// TrustedProxies parses a comma-separated list of CIDRs or bare addresses.
// An empty list means forwarding headers are never trusted.
func TrustedProxies(raw string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(part)
		if err != nil {
			return nil, err
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// EnvInt reads a positive integer, falling back to def when unset or bad.
func EnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// EnvFloat reads a positive float; unset yields def, a bad value an error.
func EnvFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// EnvDefault returns the variable or def when unset.
func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envMinUint(key string, min uint64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil // unset -> code defaults apply elsewhere
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("not a number: %v", err)
	}
	if n < min {
		return fmt.Errorf("must be >= %d", min)
	}
	return nil
}
