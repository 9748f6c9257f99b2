// Package api is the client facade over the Pandora REST backend. Every
// feature can be switched independently between the live backend and a mock
// kept in local storage; both paths return the same shapes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"pandora-cli/internal/session"
	"pandora-cli/internal/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method  string
	URL     string
	Status  int
	Message string
	Body    any
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

type Options struct {
	BaseURL string

	// HTTPClient supplies the base transport; its Transport is wrapped with bearer auth.
	HTTPClient *http.Client
	Timeout    time.Duration

	// RateLimit caps requests per second; 0 disables throttling.
	RateLimit float64

	Logger *zap.Logger

	// OnUnauthorized runs after a 401/403 cleared the session.
	OnUnauthorized func(status int)

	// SeedDir is searched for data/tasks.json before the embedded mock tasks.
	SeedDir string

	Now func() time.Time
}

type Client struct {
	base           string
	transport      http.RoundTripper
	timeout        time.Duration
	limiter        *rate.Limiter
	log            *zap.Logger
	onUnauthorized func(int)
	seedDir        string
	now            func() time.Time

	Flags   *Flags
	KV      store.KV
	Session *session.Manager

	teamMu    sync.Mutex
	teamNames map[string]string
}

func New(kv store.KV, flags *Flags, opts Options) *Client {
	if flags == nil {
		flags = NewFlags(true)
	}
	c := &Client{
		base:           strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		transport:      http.DefaultTransport,
		timeout:        opts.Timeout,
		log:            opts.Logger,
		onUnauthorized: opts.OnUnauthorized,
		seedDir:        opts.SeedDir,
		now:            opts.Now,
		Flags:          flags,
		KV:             kv,
		Session:        session.New(kv),
		teamNames:      map[string]string{},
	}
	if opts.HTTPClient != nil && opts.HTTPClient.Transport != nil {
		c.transport = opts.HTTPClient.Transport
	}
	if c.timeout <= 0 && opts.HTTPClient != nil {
		c.timeout = opts.HTTPClient.Timeout
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) useAPI(feature string) bool { return c.Flags.FeatureMode(feature) }

func (c *Client) httpClient(ctx context.Context) (*http.Client, error) {
	tok, err := c.Session.Token(ctx)
	if err != nil {
		return nil, err
	}
	rt := c.transport
	if tok != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
			Base:   c.transport,
		}
	}
	return &http.Client{Transport: rt, Timeout: c.timeout}, nil
}

// do performs one request and returns the decoded body: a JSON value
// (map[string]any, []any, json.Number, ...) or the raw text when the body is not JSON.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc, err := c.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("url", u), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", res.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		if err := c.Session.Clear(ctx); err != nil {
			c.log.Warn("clear session", zap.Error(err))
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized(res.StatusCode)
		}
		return nil, &HTTPError{Method: method, URL: u, Status: res.StatusCode}
	}
	if res.StatusCode == http.StatusNoContent {
		return map[string]any{"ok": true}, nil
	}

	var decoded any
	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		if len(bytes.TrimSpace(raw)) == 0 {
			decoded = map[string]any{}
		} else if decoded, err = decodeJSON(raw); err != nil {
			return nil, fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	} else if v, err := decodeJSON(raw); err == nil {
		decoded = v
	} else {
		decoded = string(raw)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{Method: method, URL: u, Status: res.StatusCode, Message: errorMessage(decoded), Body: decoded}
	}
	return decoded, nil
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func errorMessage(body any) string {
	if m, ok := body.(map[string]any); ok {
		for _, k := range []string{"message", "error", "detail"} {
			if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return ""
	}
	if s, ok := body.(string); ok {
		s = strings.TrimSpace(s)
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	return ""
}
