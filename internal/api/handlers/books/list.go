package books

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/views"
)

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context())
	if err != nil {
		apperr.LogDB("books", "list", err)
		h.renderBooksError(w, msgListError)
		return
	}
	p := h.page("Library")
	p.Books = rows
	h.render(w, http.StatusOK, views.Books, p)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("booksearch"))
	if term == "" {
		h.renderBooksError(w, msgNoTerm)
		return
	}

	rows, err := h.store.Search(r.Context(), term)
	if err != nil {
		apperr.LogDB("books", "search", err)
		p := h.page("Search")
		p.Search = term
		p.MessageType, p.Message = bannerDanger, msgSearchError
		h.render(w, http.StatusOK, views.Books, p)
		return
	}

	p := h.page("Search")
	p.Search = term
	p.Books = rows
	h.render(w, http.StatusOK, views.Books, p)
}
