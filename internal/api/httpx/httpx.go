package httpx

import (
	"encoding/json"
	"net/http"
)

// Outcome is the body of the JSON endpoints the pages call from script.
type Outcome struct {
	Fail bool   `json:"fail"`
	Msg  string `json:"msg"`
	Key  string `json:"key,omitempty"`
	URL  string `json:"url,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RawJSON writes pre-encoded JSON; a nil body is written as null.
func RawJSON(w http.ResponseWriter, status int, body []byte) {
	if body == nil {
		body = []byte("null")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func OK(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, Outcome{Fail: false, Msg: msg})
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Outcome{Fail: true, Msg: msg})
}
