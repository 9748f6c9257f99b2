package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newProxy(t *testing.T, backend http.HandlerFunc, opts Options) *httptest.Server {
	t.Helper()
	be := httptest.NewServer(backend)
	t.Cleanup(be.Close)
	opts.Backend = be.URL
	opts.Logger = zaptest.NewLogger(t)
	s, err := New(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string, hdr map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func TestNewRejectsBadBackend(t *testing.T) {
	_, err := New(Options{Backend: "localhost:8080"})
	assert.Error(t, err)
}

func TestForwardPassesAuthQueryAndBody(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "x=1", r.URL.RawQuery)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"t"}`, string(b))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}, Options{})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/tasks?x=1", `{"title":"t"}`, map[string]string{
		"Authorization": "Bearer tok",
		"Content-Type":  "application/json",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 7, body["id"])
}

func TestForwardKeepsJSONErrorBodies(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":true,"message":"bad password","code":"E401"}`))
	}, Options{})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/login", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "bad password", body["message"])
	assert.Equal(t, "E401", body["code"])
}

func TestForwardWrapsTextErrors(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusInternalServerError)
	}, Options{})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/3", "", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "backend error: HTTP 500: kaboom", body["message"])
}

func TestJournalListFallsBackOnServerError(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/journals/?page=2", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["list"])
	assert.EqualValues(t, 0, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 9, body["pageSize"])
	assert.Equal(t, true, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestRateLimit(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}, Options{RateLimit: 0.001, Burst: 1})

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/tasks/all", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/tasks/all", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "too many requests", body["message"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("preflight must not reach the backend")
	}, Options{AllowOrigins: []string{"http://localhost:8001"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8001")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:8001", res.Header.Get("Access-Control-Allow-Origin"))
}
