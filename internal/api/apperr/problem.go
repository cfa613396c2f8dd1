package apperr

import (
	"encoding/json"
	"net/http"
)

type Problem struct {
	Type      string `json:"type,omitempty"`   // RFC7807 type URI
	Title     string `json:"title"`            // short summary
	Status    int    `json:"status"`           // HTTP status code
	Detail    string `json:"detail,omitempty"` // human details
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.RequestID == "" && r != nil {
		// set by the RequestID middleware
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			p.RequestID = rid
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

