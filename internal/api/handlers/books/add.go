package books

import (
	"log"
	"net/http"
	"net/url"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/views"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

func (h *Handler) addForm(w http.ResponseWriter, r *http.Request) {
	lk, err := h.store.Lookups(r.Context())
	if err != nil {
		apperr.LogDB("books", "add form lookups", err)
		h.renderBooksError(w, msgGenericError)
		return
	}

	p := h.page("Add a book")
	p.Lookups = lk
	switch validate.ParseFlag(r.URL.Query().Get("success")) {
	case validate.FlagSuccess:
		p.MessageType, p.Message = bannerSuccess, msgAdded
	case validate.FlagFailure:
		p.MessageType, p.Message = bannerDanger, msgAddFailed
	}
	h.render(w, http.StatusOK, views.AddBook, p)
}

func (h *Handler) insert(w http.ResponseWriter, r *http.Request) {
	in, err := formInput(r)
	if err != nil {
		log.Printf("[books] insert rejected: %v", err)
		h.redirect(w, r, "/addbook", url.Values{"success": {"0"}})
		return
	}
	if _, err := h.store.Insert(r.Context(), in); err != nil {
		apperr.LogDB("books", "insert", err)
		h.redirect(w, r, "/addbook", url.Values{"success": {"0"}})
		return
	}
	h.redirect(w, r, "/addbook", url.Values{"success": {"1"}})
}
