package books

import (
	"log"
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
)

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	key, err := h.exporter.Run(r.Context())
	if err != nil {
		log.Printf("[export] on-demand run failed: %v", err)
		httpx.Fail(w, http.StatusInternalServerError, msgExportFailed)
		return
	}

	out := httpx.Outcome{Msg: "Your library has been exported.", Key: key}
	// the snapshot is stored either way; the link is a convenience
	if out.URL, err = h.exporter.DownloadURL(r.Context(), key); err != nil {
		log.Printf("[export] %v", err)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
