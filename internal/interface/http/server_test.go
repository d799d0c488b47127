package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/interface/http/handlers"
	"github.com/trajectory-hub/student-dashboard/internal/interface/presenter"
)

type stubDashboard struct {
	snap  query.Snapshot
	next  query.Snapshot
	loads atomic.Int32
}

func (d *stubDashboard) Load(context.Context) query.Snapshot {
	d.loads.Add(1)
	d.snap = d.next
	return d.snap
}

func (d *stubDashboard) Snapshot() query.Snapshot { return d.snap }

type stubSessions struct{ s session.Session }

func (s stubSessions) Session() session.Session { return s.s }

var loggedIn = stubSessions{s: session.Session{
	Token: "tok",
	User:  &session.User{ID: 1, Email: "ada@uni.edu", Role: session.RoleStudent},
}}

func readySnapshot() query.Snapshot {
	d := &query.Data{}
	d.Derived = query.Derive(d)
	return query.Snapshot{Status: query.StatusReady, Data: d, LoadedAt: time.Now()}
}

func newTestServer(t *testing.T, dash *stubDashboard, sessions SessionSource, checker handlers.HealthChecker) *httptest.Server {
	t.Helper()
	s := NewServer(DefaultConfig(), Dependencies{
		Dashboard:     dash,
		Sessions:      sessions,
		HealthChecker: checker,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode(t *testing.T, resp *http.Response) JSONResponse {
	t.Helper()
	defer resp.Body.Close()
	var out JSONResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_GetDashboardReady(t *testing.T) {
	dash := &stubDashboard{snap: readySnapshot()}
	ts := newTestServer(t, dash, loggedIn, nil)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decode(t, resp)
	assert.True(t, body.Success)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ready", data["status"])
	assert.Equal(t, "ada", data["display_name"])
	assert.Equal(t, int32(0), dash.loads.Load(), "GET never loads")
}

func TestServer_GetDashboardError(t *testing.T) {
	dash := &stubDashboard{snap: query.Snapshot{Status: query.StatusError, Message: "Insights engine unavailable"}}
	ts := newTestServer(t, dash, loggedIn, nil)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decode(t, resp)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "Insights engine unavailable", body.Error.Message)
	assert.Equal(t, presenter.HTTPRetryHint, body.Error.Details)
}

func TestServer_Reload(t *testing.T) {
	dash := &stubDashboard{
		snap: query.Snapshot{Status: query.StatusError, Message: query.DefaultErrorMessage},
		next: readySnapshot(),
	}
	ts := newTestServer(t, dash, loggedIn, nil)

	resp, err := http.Post(ts.URL+"/api/dashboard/reload", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, int32(1), dash.loads.Load())
}

func TestServer_ReloadRequiresSession(t *testing.T) {
	dash := &stubDashboard{}
	ts := newTestServer(t, dash, stubSessions{}, nil)

	resp, err := http.Post(ts.URL+"/api/dashboard/reload", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, "not_authenticated", body.Error.Code)
	assert.Equal(t, int32(0), dash.loads.Load())
}

func TestServer_Health(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddCheck("backend", func(context.Context) error { return nil })
	ts := newTestServer(t, &stubDashboard{}, loggedIn, checker)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	checker.AddCheck("session_store", func(context.Context) error { return errors.New("connection refused") })
	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode(t, resp)
	assert.False(t, body.Success)
}

func TestServer_MetricsAndNotFound(t *testing.T) {
	ts := newTestServer(t, &stubDashboard{snap: readySnapshot()}, loggedIn, nil)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "student_dashboard_http_requests_total")

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &stubDashboard{}, loggedIn, nil)

	resp, err := http.Get(ts.URL + "/api/dashboard/reload")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_ReloadThrottled(t *testing.T) {
	dash := &stubDashboard{next: readySnapshot()}
	cfg := DefaultConfig()
	cfg.ReloadLimit = handlers.RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1}
	s := NewServer(cfg, Dependencies{Dashboard: dash, Sessions: loggedIn})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/api/dashboard/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/dashboard/reload", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	body := decode(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, "rate_limited", body.Error.Code)
	assert.Equal(t, int32(1), dash.loads.Load())
}
