package router

import (
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/handlers/books"
	"github.com/5w1tchy/bookshelf/internal/api/views"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Router mounts the library under its base path. lookupMW applies only to
// the metadata proxy route.
func Router(h *books.Handler, lookupMW ...func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	base := h.Base()

	// Root
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+"/", http.StatusFound)
	})

	mux.Handle("GET "+base+"/static/", http.StripPrefix(base+"/static", views.Static()))

	h.Register(mux, lookupMW...)
	return mux
}

// Apply wraps h so the first middleware listed is the outermost.
func Apply(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
