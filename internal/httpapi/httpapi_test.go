package httpapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-api/internal/config"
	"climate-api/internal/metrics"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) requests() []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.records {
		if m["msg"].String() == "http request" {
			out = append(out, m)
		}
	}
	return out
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Run("ok when the store answers", func(t *testing.T) {
		r := NewRouter(openMemoryDB(t), slog.New(&captureHandler{}), nil)

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("500 when the store is gone", func(t *testing.T) {
		db := openMemoryDB(t)
		require.NoError(t, db.Close())
		r := NewRouter(db, slog.New(&captureHandler{}), nil)

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Internal Server Error", body["error"])
	})
}

func TestNewRouter_NotFoundIsJSON(t *testing.T) {
	r := NewRouter(openMemoryDB(t), slog.New(&captureHandler{}), nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	r := NewRouter(openMemoryDB(t), slog.New(&captureHandler{}), nil)

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	logs := &captureHandler{}
	r := NewRouter(openMemoryDB(t), slog.New(logs), nil)
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	reqs := logs.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), reqs[0]["status"].Int64())
}

func TestRequestID(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("mints a uuid", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
	})

	t.Run("honours the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := serve(h, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
		serve(h, req)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("empty outside a request", func(t *testing.T) {
		assert.Empty(t, RequestIDFromContext(context.Background()))
	})
}

func TestRequestLogger(t *testing.T) {
	logs := &captureHandler{}
	m := metrics.New()
	r := NewRouter(openMemoryDB(t), slog.New(logs), m)
	r.Get("/api/v1.0/{start_date}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1.0/2017-01-01", nil)
	req.Header.Set(requestIDHeader, "req-1")
	serve(r, req)
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	reqs := logs.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/v1.0/2017-01-01", reqs[0]["path"].String())
	assert.Equal(t, "/api/v1.0/{start_date}", reqs[0]["route"].String())
	assert.Equal(t, int64(http.StatusOK), reqs[0]["status"].Int64())
	assert.Equal(t, int64(5), reqs[0]["bytes"].Int64())
	assert.Equal(t, "req-1", reqs[0]["request_id"].String())
	assert.Equal(t, unmatchedRoute, reqs[1]["route"].String())
	assert.Equal(t, int64(http.StatusNotFound), reqs[1]["status"].Int64())

	body := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()
	assert.Contains(t, body, `climate_api_http_requests_total{method="GET",route="/api/v1.0/{start_date}",status="200"} 1`)
	assert.Contains(t, body, `climate_api_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestStatusRecorder_FirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)
	sr.WriteHeader(http.StatusOK)
	_, err := sr.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, sr.status)
	assert.Equal(t, 2, sr.bytes)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestNewServer(t *testing.T) {
	cfg := config.Config{HTTPAddr: "127.0.0.1:0", ReadHeaderTimeout: 3 * time.Second}
	large := strings.Repeat(`["USC00519397"],`, 512)
	srv := NewServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, large)
	}))

	assert.Equal(t, cfg.HTTPAddr, srv.Addr)
	assert.Equal(t, 3*time.Second, srv.ReadHeaderTimeout)

	t.Run("compresses when the client accepts gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := serve(srv.Handler, req)

		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, large, string(plain))
	})

	t.Run("plain otherwise", func(t *testing.T) {
		rec := serve(srv.Handler, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})
}
