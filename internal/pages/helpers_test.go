package pages

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func nowFn() time.Time { return fixedNow }

func newClient(t *testing.T, baseURL string, useAPI bool) *api.Client {
	t.Helper()
	return api.New(store.NewMemory(), api.NewFlags(useAPI), api.Options{
		BaseURL: baseURL,
		Logger:  zaptest.NewLogger(t),
		SeedDir: t.TempDir(),
		Now:     nowFn,
	})
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func setCurrentUser(t *testing.T, c *api.Client, u model.User) {
	t.Helper()
	if err := c.Session.SetCurrentUser(context.Background(), u); err != nil {
		t.Fatalf("set current user: %v", err)
	}
}
