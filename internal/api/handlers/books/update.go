package books

import (
	"log"
	"net/http"
	"net/url"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/views"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := validate.ParseID("id", q.Get("id"))
	if err != nil {
		log.Printf("[books] update form: %v", err)
		h.renderBooksError(w, msgGenericError)
		return
	}

	rec, lk, err := h.store.Edit(r.Context(), id)
	if err != nil {
		apperr.LogDB("books", "update form", err)
		h.renderBooksError(w, msgGenericError)
		return
	}

	p := h.page("Update " + rec.Title)
	p.Record, p.Lookups = rec, lk
	switch validate.ParseFlag(q.Get("success")) {
	case validate.FlagSuccess:
		p.MessageType, p.Message = bannerSuccess, rec.Title+" has been updated."
	case validate.FlagFailure:
		p.MessageType, p.Message = bannerDanger, msgUpdateFailed
	}
	h.render(w, http.StatusOK, views.UpdateBook, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := validate.ParseID("id", raw)
	if err != nil {
		// nothing to return to; fall back to the listing
		log.Printf("[books] update rejected: %v", err)
		h.redirect(w, r, "/", nil)
		return
	}
	back := func(ok bool) {
		h.redirect(w, r, "/updatebook", url.Values{"id": {idString(id)}, "success": {successValue(ok)}})
	}

	in, err := formInput(r)
	if err != nil {
		log.Printf("[books] update %d rejected: %v", id, err)
		back(false)
		return
	}
	if err := h.store.Update(r.Context(), id, in); err != nil {
		apperr.LogDB("books", "update", err)
		back(false)
		return
	}
	back(true)
}
