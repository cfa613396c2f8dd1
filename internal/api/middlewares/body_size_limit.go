package middlewares

import (
	"net/http"
	"os"
	"strconv"
)

// DefaultMaxBody is plenty for the six-field book form.
const DefaultMaxBody = int64(64 * 1024)

// BodySizeLimit caps request bodies of POST/PUT/PATCH at MAX_BODY_SIZE bytes.
func BodySizeLimit(next http.Handler) http.Handler {
	limit := DefaultMaxBody
	if envLimit := os.Getenv("MAX_BODY_SIZE"); envLimit != "" {
		if parsed, err := strconv.ParseInt(envLimit, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
