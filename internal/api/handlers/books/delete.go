package books

import (
	"log"
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

func (h *Handler) del(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ParseID("id", r.PathValue("id"))
	if err != nil {
		log.Printf("[books] delete rejected: %v", err)
		httpx.Fail(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	title, err := h.store.Delete(r.Context(), id)
	if err != nil {
		apperr.LogDB("books", "delete", err)
		httpx.Fail(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}
	httpx.OK(w, title+" has been removed.")
}
