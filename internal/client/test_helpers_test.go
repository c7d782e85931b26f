package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/require"
)

// recordedRequest is a request seen by the fake API.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]interface{}
	Auth   string
}

// fakeQuoter serves the OAuth endpoints under /v1/auth and hands every other
// request to handler.
type fakeQuoter struct {
	*httptest.Server

	authorizeCalls atomic.Int32
	authorizeFails atomic.Bool

	mutex    sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newFakeQuoter(t *testing.T, handler http.HandlerFunc) *fakeQuoter {
	t.Helper()

	fake := &fakeQuoter{handler: handler}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/oauth/authorize", func(w http.ResponseWriter, r *http.Request) {
		fake.authorizeCalls.Add(1)

		if fake.authorizeFails.Load() {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"errors": []map[string]string{{"detail": "Invalid client credentials"}},
			})

			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"access_token":  "access-token",
			"refresh_token": "refresh-token",
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		}

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &recorded.Body)
		}

		fake.mutex.Lock()
		fake.requests = append(fake.requests, recorded)
		fake.mutex.Unlock()

		if fake.handler == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{})

			return
		}

		fake.handler(w, r)
	})

	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)

	return fake
}

func (f *fakeQuoter) recorded() []recordedRequest {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeQuoter) config() *quoter.Config {
	return &quoter.Config{
		BaseURL:       f.URL + "/v1/",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RetryWaitUnit: time.Millisecond,
	}
}

// NewTestClient creates a client against the fake API.
func NewTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeQuoter) {
	t.Helper()

	fake := newFakeQuoter(t, handler)

	client, err := New(fake.config())
	require.NoError(t, err)

	return client, fake
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// records builds count records with sequential ids starting at first.
func records(first, count int) []map[string]interface{} {
	page := make([]map[string]interface{}, 0, count)
	for i := range count {
		page = append(page, map[string]interface{}{"id": quoter.FormatValue(first + i)})
	}

	return page
}
