package middlewares

import (
	"crypto/rand"
	"log"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter is satisfied by both the Redis-backed and the in-process bucket.
type Limiter interface {
	Middleware(next http.Handler) http.Handler
}

// --------- Key helpers ---------

type KeyFunc func(r *http.Request) string

// PerIPKey buckets callers by client address. Forwarding headers are only
// honoured when the direct peer is inside one of the trusted prefixes.
func PerIPKey(prefix string, trusted ...netip.Prefix) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r, trusted)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

// SharedKey puts every caller in one bucket, for limits that protect a
// quota owned by the whole deployment.
func SharedKey(key string) KeyFunc {
	return func(*http.Request) string { return key }
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	// X-Forwarded-For may have a list: client, proxy1, proxy2...
	// Walk from the right past our own proxies; the first other hop is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && (i == 0 || !isTrusted(hop, trusted)) {
				return hop
			}
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func tooMany(w http.ResponseWriter, retryAfter time.Duration) {
	sec := int64((retryAfter + time.Second - 1) / time.Second)
	if sec < 1 {
		sec = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(sec, 10))
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}

// --------- Token Bucket (Redis + Lua) ---------

const tokenBucketLua = `
-- KEYS[1] = bucket key (hash with fields: tokens, ts)
-- ARGV[1] = ratePerS (float)
-- ARGV[2] = capacity (int)
-- Returns: {allowed (1/0), remaining_tokens (int), retry_after_ms (int)}
local key   = KEYS[1]
local rate  = tonumber(ARGV[1])
local cap   = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])

if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`

// RedisTokenBucket shares one bucket per key across every instance.
type RedisTokenBucket struct {
	rdb      *redis.Client
	keyFn    KeyFunc
	ratePerS float64
	burst    int
	script   *redis.Script
}

func NewRedisTokenBucket(rdb *redis.Client, ratePerSecond float64, burst int, keyFn KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{
		rdb:      rdb,
		keyFn:    keyFn,
		ratePerS: ratePerSecond,
		burst:    burst,
		script:   redis.NewScript(tokenBucketLua),
	}
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := tb.keyFn(r)

		res, err := tb.script.Run(r.Context(), tb.rdb, []string{key},
			strconv.FormatFloat(tb.ratePerS, 'f', -1, 64),
			strconv.Itoa(tb.burst),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			// fail open: the limiter protects a quota, not correctness
			log.Printf("[TokenBucket] Redis error: %v (allowing request)", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			retry := time.Duration(res[2]) * time.Millisecond
			log.Printf("[TokenBucket] Blocked request from %s (key=%s). Retry after %s", r.RemoteAddr, key, retry)
			tooMany(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- Sliding Window (Redis ZSET) ---------

const slidingWindowLua = `
-- KEYS[1] = window key (zset of request timestamps)
-- ARGV[1] = now_ms, ARGV[2] = window_ms, ARGV[3] = limit, ARGV[4] = member
-- Returns: {allowed (1/0), remaining (int), retry_after_ms (int)}
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window + 1000)
  return {1, limit - count - 1, 0}
end

local retry_ms = 1000
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  retry_ms = math.max(1000, math.floor(tonumber(oldest[2]) + window - now))
end
return {0, 0, retry_ms}
`

// RedisSlidingWindow allows at most limit requests per key in any window.
// Only admitted requests are recorded, so a blocked caller does not extend
// the block.
type RedisSlidingWindow struct {
	rdb    *redis.Client
	keyFn  KeyFunc
	limit  int
	window time.Duration
	script *redis.Script
}

func NewRedisSlidingWindow(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		rdb:    rdb,
		keyFn:  keyFn,
		limit:  limit,
		window: window,
		script: redis.NewScript(slidingWindowLua),
	}
}

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UnixMilli()
		key := sw.keyFn(r)
		member := strconv.FormatInt(now, 10) + ":" + rand.Text()

		res, err := sw.script.Run(r.Context(), sw.rdb, []string{key},
			now,
			sw.window.Milliseconds(),
			sw.limit,
			member,
		).Int64Slice()
		if err != nil || len(res) != 3 {
			log.Printf("[SlidingWindow] Redis error: %v (allowing request)", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Policy", "sliding-window")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(sw.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			retry := time.Duration(res[2]) * time.Millisecond
			log.Printf("[SlidingWindow] Blocked request from %s (key=%s). Retry after %s", r.RemoteAddr, key, retry)
			tooMany(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- In-process bucket (x/time/rate) ---------

// LocalRateLimit keeps one rate.Limiter per key in memory. It is the
// fallback when no Redis is configured and only limits this instance.
type LocalRateLimit struct {
	keyFn KeyFunc
	limit rate.Limit
	burst int
	idle  time.Duration

	mu      sync.Mutex
	buckets map[string]*localBucket
	sweptAt time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewLocalRateLimit(ratePerSecond float64, burst int, keyFn KeyFunc) *LocalRateLimit {
	return &LocalRateLimit{
		keyFn:   keyFn,
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		buckets: make(map[string]*localBucket),
	}
}

func (l *LocalRateLimit) bucket(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweptAt) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.sweptAt = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

func (l *LocalRateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		key := l.keyFn(r)
		res := l.bucket(key, now).ReserveN(now, 1)

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))

		if !res.OK() {
			tooMany(w, time.Second)
			return
		}
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			log.Printf("[RateLimit] Blocked request from %s (key=%s). Retry after %s", r.RemoteAddr, key, delay)
			tooMany(w, delay)
			return
		}
		next.ServeHTTP(w, r)
	})
}
