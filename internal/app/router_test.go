package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtca-portal/dtca-portal/internal/analytics"
	"github.com/dtca-portal/dtca-portal/internal/analytics/svg"
	"github.com/dtca-portal/dtca-portal/internal/dashboard"
	dashboardhttp "github.com/dtca-portal/dtca-portal/internal/dashboard/http"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
	"github.com/dtca-portal/dtca-portal/internal/observability"
	"github.com/dtca-portal/dtca-portal/internal/shared"
	"github.com/dtca-portal/dtca-portal/internal/view"
	_ "github.com/dtca-portal/dtca-portal/testing"
)

var csrfMeta = regexp.MustCompile(`name="csrf-token" content="([^"]+)"`)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}

	ds, err := fixtures.Default()
	require.NoError(t, err)
	renderer := svg.Renderer{}
	service := analytics.NewService(fixtures.NewStaticStore(ds), analytics.NewCache(client, time.Minute), analytics.Renderers{
		Donut: renderer,
		Ring:  renderer,
		Bars:  renderer,
	})
	templates, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("csrf-secret")
	metrics := observability.NewMetrics()

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   shared.NewSessionManager(client, "dtca_session", "secret", time.Hour, false),
		CSRFManager:      csrf,
		DashboardHandler: dashboardhttp.NewHandler(logger, service, templates, csrf, metrics),
		Metrics:          metrics,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestStaticAssetsAreCached(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "javascript")
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, contentSecurityPolicy, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Result().Cookies())
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	router := newTestRouter(t)
	form := url.Values{"view": {"students"}}
	req := httptest.NewRequest(http.MethodPost, "/view", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestNavigationPersistsAcrossRequests(t *testing.T) {
	router := newTestRouter(t)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, first.Code)
	match := csrfMeta.FindStringSubmatch(first.Body.String())
	require.Len(t, match, 2)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{"view": {"students"}}
	post := httptest.NewRequest(http.MethodPost, "/view", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post.Header.Set("X-CSRF-Token", match[1])
	for _, c := range cookies {
		post.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, post)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	for _, c := range cookies {
		get.AddCookie(c)
	}
	state := httptest.NewRecorder()
	router.ServeHTTP(state, get)
	require.Equal(t, http.StatusOK, state.Code)
	assert.Contains(t, state.Body.String(), `"view":"students"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dtca_http_requests_total")
}

func TestSessionCommitFailureReplacesResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var logs bytes.Buffer
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
		Config:         cfg,
		SessionManager: shared.NewSessionManager(client, "dtca_session", "secret", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
	}) {
		r.Use(mw)
	}
	r.Get("/switch", func(w http.ResponseWriter, req *http.Request) {
		state := dashboard.InitialState()
		state.View = dashboard.ViewStudents
		dashboard.SaveState(shared.SessionFromContext(req.Context()), state)
		mr.SetError("READONLY You can't write against a read only replica.")
		http.Redirect(w, req, "/", http.StatusSeeOther)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/switch", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Empty(t, rr.Result().Cookies())
	assert.NotContains(t, rr.Body.String(), "See Other")
	assert.Contains(t, logs.String(), "commit session")
	assert.Contains(t, logs.String(), "status=303")

	mr.SetError("")
	assert.Empty(t, mr.Keys(), "no session was stored")
}

func TestSessionCommitSucceedsBeforeBody(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "dtca_session", "secret", time.Hour, false)
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:         &Config{RateLimitPerMinute: 1000},
		SessionManager: sessions,
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
	}) {
		r.Use(mw)
	}
	r.Get("/write", func(w http.ResponseWriter, req *http.Request) {
		shared.SessionFromContext(req.Context()).Set("dashboard.view", "reports")
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/write", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	require.Len(t, rr.Result().Cookies(), 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rr.Result().Cookies()[0])
	sess, err := sessions.Load(next.Context(), next)
	require.NoError(t, err)
	assert.Equal(t, "reports", sess.Get("dashboard.view"))
}
