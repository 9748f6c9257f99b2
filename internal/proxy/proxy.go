// Package proxy is the development proxy the web client is served behind: it
// forwards /api/* to the backend, passes the bearer token through, and turns
// backend failures into {"error": true, "message": ...} bodies.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 30 * time.Second
	shutdownTimeout    = 5 * time.Second
	maxBodyBytes       = 10 << 20
	journalPageSize    = 9
	journalLoadFailure = "journal data failed to load, the backend may hold inconsistent records; ask an administrator to check the database"
)

// forwardedHeaders are copied from the client request to the backend.
var forwardedHeaders = []string{"Authorization", "Content-Type", "Accept", "Accept-Language", "Cache-Control"}

type Options struct {
	Backend      string
	AllowOrigins []string

	// RateLimit caps requests per second across all clients; 0 disables it.
	RateLimit float64
	Burst     int

	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *zap.Logger
}

type Server struct {
	e       *echo.Echo
	backend *url.URL
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// ErrorBody is the JSON body the proxy answers with when it cannot relay a
// usable backend response.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func New(opts Options) (*Server, error) {
	backend, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.Backend), "/"))
	if err != nil {
		return nil, fmt.Errorf("proxy backend: %w", err)
	}
	if backend.Scheme != "http" && backend.Scheme != "https" {
		return nil, fmt.Errorf("proxy backend must be an http(s) URL: %q", opts.Backend)
	}
	s := &Server{
		e:       echo.New(),
		backend: backend,
		client:  &http.Client{Transport: opts.Transport, Timeout: opts.Timeout},
		log:     opts.Logger,
	}
	if s.client.Timeout <= 0 {
		s.client.Timeout = defaultTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = max(1, int(opts.RateLimit))
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("proxy",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	if len(opts.AllowOrigins) > 0 {
		s.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, "Cache-Control"},
			AllowCredentials: true,
		}))
	}
	s.e.Use(s.rateLimit)
	s.e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	})
	s.e.Any("/api/*", s.forward)
	return s, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves on listen until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listen string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.e.Start(listen) }()
	s.log.Info("proxy listening", zap.String("listen", listen), zap.String("backend", s.backend.String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.e.Shutdown(sctx)
	}
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return c.JSON(http.StatusTooManyRequests, ErrorBody{Error: true, Message: "too many requests"})
		}
		return next(c)
	}
}

func (s *Server) forward(c echo.Context) error {
	req := c.Request()
	target := *s.backend
	target.Path = strings.TrimRight(s.backend.Path, "/") + req.URL.Path
	target.RawQuery = req.URL.RawQuery

	var body io.Reader
	if req.Body != nil && req.Method != http.MethodGet && req.Method != http.MethodHead {
		b, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorBody{Error: true, Message: "read request body: " + err.Error()})
		}
		body = bytes.NewReader(b)
	}
	out, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorBody{Error: true, Message: err.Error()})
	}
	for _, h := range forwardedHeaders {
		if v := req.Header.Get(h); v != "" {
			out.Header.Set(h, v)
		}
	}

	res, err := s.client.Do(out)
	if err != nil {
		s.log.Warn("backend unreachable", zap.String("url", target.String()), zap.Error(err))
		if isJournalList(req) {
			return c.JSON(http.StatusOK, emptyJournalPage(req, journalLoadFailure))
		}
		return c.JSON(http.StatusBadGateway, ErrorBody{Error: true, Message: "cannot reach backend: " + err.Error()})
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorBody{Error: true, Message: "read backend response: " + err.Error()})
	}

	if res.StatusCode >= 500 && isJournalList(req) {
		s.log.Warn("journal list failed upstream", zap.Int("status", res.StatusCode))
		return c.JSON(http.StatusOK, emptyJournalPage(req, journalLoadFailure))
	}
	if res.StatusCode >= 400 && !isJSONObject(raw) {
		status := res.StatusCode
		if status >= 500 {
			status = http.StatusBadGateway
		}
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return c.JSON(status, ErrorBody{Error: true, Message: fmt.Sprintf("backend error: HTTP %d: %s", res.StatusCode, truncate(msg, 200))})
	}

	ct := res.Header.Get(echo.HeaderContentType)
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	if res.StatusCode == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Blob(res.StatusCode, ct, raw)
}

func isJournalList(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	p := strings.TrimRight(req.URL.Path, "/")
	return p == "/api/journals"
}

func emptyJournalPage(req *http.Request, msg string) map[string]any {
	q := req.URL.Query()
	return map[string]any{
		"list":     []any{},
		"total":    0,
		"page":     queryInt(q, "page", 1),
		"pageSize": queryInt(q, "pageSize", journalPageSize),
		"error":    true,
		"message":  msg,
	}
}

func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func isJSONObject(b []byte) bool {
	var m map[string]any
	return json.Unmarshal(b, &m) == nil && m != nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
