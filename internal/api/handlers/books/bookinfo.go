package books

import (
	"errors"
	"log"
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/platform/googlebooks"
)

// bookInfo passes bookquery through to the metadata service untouched and
// answers with the first matching volume, or null.
func (h *Handler) bookInfo(w http.ResponseWriter, r *http.Request) {
	item, err := h.info.Lookup(r.Context(), r.URL.Query().Get("bookquery"))
	if err != nil {
		log.Printf("[bookinfo] lookup failed: %v", err)
		status := http.StatusInternalServerError
		var se *googlebooks.StatusError
		if errors.As(err, &se) && se.StatusCode >= 400 {
			status = se.StatusCode
		}
		apperr.Write(w, r, apperr.Problem{
			Title:  msgLookupFailed,
			Status: status,
			Detail: http.StatusText(status),
		})
		return
	}
	httpx.RawJSON(w, http.StatusOK, item)
}
