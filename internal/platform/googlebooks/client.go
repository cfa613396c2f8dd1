package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// KeyFunc returns the API key. It is called on every lookup so a rotated
// key is picked up without a restart.
type KeyFunc func() string

func EnvKey(name string) KeyFunc {
	return func() string { return os.Getenv(name) }
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	key        KeyFunc
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }
func WithBaseURL(u string) Option          { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

func NewClient(key KeyFunc, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		key:        key,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("googlebooks: unexpected status code: %d", e.StatusCode)
}

// volumesResponse matches the parts of volumes?q= we read.
type volumesResponse struct {
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

// Lookup forwards rawQuery (already URL-encoded, e.g. "q=isbn:0261103571")
// to the volumes endpoint and returns the first item verbatim, or nil when
// nothing matched.
func (c *Client) Lookup(ctx context.Context, rawQuery string) (json.RawMessage, error) {
	query := rawQuery + "&key=" + c.key()
	u := c.baseURL + "/volumes?" + query

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("googlebooks: decode volumes: %w", err)
	}
	if vr.TotalItems == 0 || len(vr.Items) == 0 {
		return nil, nil
	}
	return vr.Items[0], nil
}
