package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"pandora-cli/internal/store"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

type testBackend struct {
	*httptest.Server
	hits atomic.Int64
}

func newBackend(t *testing.T, h http.HandlerFunc) *testBackend {
	t.Helper()
	b := &testBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func newTestClient(t *testing.T, baseURL string, useAPI bool) *Client {
	t.Helper()
	return New(store.NewMemory(), NewFlags(useAPI), Options{
		BaseURL: baseURL,
		Logger:  zaptest.NewLogger(t),
		SeedDir: t.TempDir(),
		Now:     func() time.Time { return fixedNow },
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func signIn(t *testing.T, c *Client, token string) {
	t.Helper()
	if err := store.WriteJSON(context.Background(), c.KV, store.KeyAuthToken, token); err != nil {
		t.Fatalf("write token: %v", err)
	}
}
