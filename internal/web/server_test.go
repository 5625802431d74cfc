package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/querycache"
	"jobflow-dashboard/internal/service"
	"jobflow-dashboard/internal/storage"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openerStub struct {
	mu   sync.Mutex
	urls []string
}

func (o *openerStub) Open(_ context.Context, u string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, u)
	return nil
}

type testEnv struct {
	server *Server
	mux    *http.ServeMux
	store  *storage.MemoryStore
	tokens *credentials.TokenStore
	opener *openerStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mux := http.NewServeMux()
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	cfg := config.Default()
	cfg.API.BaseURL = backend.URL
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Discovery.OpenInterval = "1ms"

	store := storage.NewMemoryStore()
	tokens := credentials.NewTokenStore(store)
	opener := &openerStub{}
	svc := service.New(service.Deps{
		Config: cfg,
		Client: apiclient.New(backend.URL, tokens),
		Cache:  querycache.New(querycache.Options{RetryBackoff: time.Millisecond}),
		Store:  store,
		Tokens: tokens,
		Opener: opener,
	})

	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	s, err := New(cfg, svc, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return &testEnv{server: s, mux: mux, store: store, tokens: tokens, opener: opener}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, e.tokens.SetSession(context.Background(), "tok", "ann@example.com"))
}

func (e *testEnv) get(path string) *ut.ResponseRecorder {
	return ut.PerformRequest(e.server.Engine().Engine, http.MethodGet, path, nil)
}

func (e *testEnv) post(path string, form url.Values) *ut.ResponseRecorder {
	body := form.Encode()
	return ut.PerformRequest(e.server.Engine().Engine, http.MethodPost, path,
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"},
	)
}

func writeJSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

// location 解析跳转地址，兼容绝对和相对地址
func location(t *testing.T, resp *ut.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.Code)
	u, err := url.Parse(string(resp.Header().Peek("Location")))
	require.NoError(t, err)
	return u
}

func TestProtectedPagesRedirectToAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/urls", "/applications", "/jobs", "/profile", "/cv-builder", "/settings"} {
		resp := env.get(path)
		assert.Equal(t, "/auth", location(t, resp).Path, path)
	}

	resp := env.post("/urls", url.Values{"url": {"https://example.com"}})
	assert.Equal(t, "/auth", location(t, resp).Path, "表单提交同样需要登录")

	resp = env.get("/auth")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Sign in")
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get("/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "404 Page Not Found")
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("POST "+constants.PathLogin, writeJSON(200, map[string]any{"token": "jwt"}))

	resp := env.post("/auth/login", url.Values{"email": {"ann@example.com"}, "password": {"pw"}})
	loc := location(t, resp)
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, "Welcome back, ann@example.com", loc.Query().Get("flash"))

	token, err := env.tokens.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)

	resp = env.get("/auth")
	assert.Equal(t, "/", location(t, resp).Path, "已登录访问登录页回到看板")
}

func TestLoginValidationError(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post("/auth/login", url.Values{"email": {"not-an-email"}, "password": {"pw"}})
	loc := location(t, resp)
	assert.Equal(t, "/auth", loc.Path)
	assert.Equal(t, "error", loc.Query().Get("kind"))
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.mux.HandleFunc("GET "+constants.PathStats, writeJSON(500, map[string]string{"error": "boom"}))
	env.mux.HandleFunc("GET "+constants.PathApplications, writeJSON(200, []models.Application{
		{ID: "1", Company: "Acme", Position: "Go Dev", Status: models.ApplicationInterview},
		{ID: "2", Company: "Globex", Status: models.ApplicationPending},
		{ID: "3", Company: "Initech", Status: models.ApplicationRejected},
		{ID: "4", Company: "Umbrella", Status: models.ApplicationAccepted},
	}))
	env.mux.HandleFunc("GET "+constants.PathUserPreferences, writeJSON(401, map[string]string{"error": "no"}))

	resp := env.get("/")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Recent Applications")
	assert.Contains(t, body, "Initech")
	assert.NotContains(t, body, "Umbrella", "只显示前三条")
	assert.NotContains(t, body, "Total Applications", "统计出错时不显示卡片")
	assert.Contains(t, body, `class="active"`)
}

func TestURLsPage(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.mux.HandleFunc("GET "+constants.PathJobURLs, writeJSON(200, []models.JobURL{
		{ID: "1", URL: "https://boards.greenhouse.io/techcorp/jobs/12345", Company: "TechCorp", Status: models.JobURLPending},
		{ID: "2", URL: "https://jobs.lever.co/startupxyz/67890", Company: "StartupXYZ", Status: models.JobURLApplied},
	}))

	resp := env.get("/urls?q=techcorp")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "https://boards.greenhouse.io/techcorp/jo...")
	assert.NotContains(t, body, "StartupXYZ</td>")

	resp = env.get("/urls?q=nothing")
	assert.Contains(t, resp.Body.String(), "No URLs match your filters")
}

func TestAddURL(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	var got models.JobURL
	env.mux.HandleFunc("POST "+constants.PathJobURLs, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(201, models.JobURL{ID: "9", URL: got.URL, Status: got.Status})(w, r)
	})

	resp := env.post("/urls", url.Values{"url": {"https://example.com/job"}, "company": {"Acme"}})
	loc := location(t, resp)
	assert.Equal(t, "/urls", loc.Path)
	assert.Equal(t, "Job URL added successfully", loc.Query().Get("flash"))
	assert.Equal(t, models.JobURLPending, got.Status, "未选择状态时默认 pending")

	resp = env.post("/urls", url.Values{"url": {"not a url"}})
	loc = location(t, resp)
	assert.Equal(t, "error", loc.Query().Get("kind"))
	assert.Equal(t, "Please enter a valid URL", loc.Query().Get("flash"))
}

func TestUnauthorizedMutationReturnsToAuth(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.mux.HandleFunc("DELETE /api/job-urls/{id}", writeJSON(401, map[string]string{"error": "expired"}))

	resp := env.post("/urls/7/delete", url.Values{})
	assert.Equal(t, "/auth", location(t, resp).Path)
}

func TestJobsAndAutoApply(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	jobs := []models.JobListing{
		{ID: "a", Title: "Go Dev", Company: "Acme", URL: "https://acme.example/a", PostedDate: "2024-01-19"},
		{ID: "b", Title: "SRE", Company: "Globex", URL: "https://globex.example/b", PostedDate: "2024-01-01"},
	}
	require.NoError(t, storage.SetJSON(context.Background(), env.store, constants.KeyDiscoveredJobs, jobs))

	resp := env.get("/jobs")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "2 jobs found")
	assert.Contains(t, body, "2 days ago")
	assert.Contains(t, body, "1/1/2024")

	resp = env.post("/jobs/auto-apply", url.Values{"ids": {"b", "a"}})
	loc := location(t, resp)
	assert.Equal(t, "Auto-apply started for 2 jobs", loc.Query().Get("flash"))
	assert.Equal(t, []string{"https://acme.example/a", "https://globex.example/b"}, env.opener.urls, "按列表顺序打开")

	resp = env.post("/jobs/auto-apply", url.Values{})
	loc = location(t, resp)
	assert.Equal(t, "Please select at least one job to apply to", loc.Query().Get("flash"))
}

func TestSettingsAndClear(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.get("/settings")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "/api/user-preferences")

	resp = env.post("/settings", url.Values{
		"apiEndpoint":   {"https://api.example.com/prefs"},
		"syncFrequency": {"5min"},
		"actionDelay":   {"45"},
	})
	loc := location(t, resp)
	assert.Equal(t, "Action delay must be between 1 and 30 seconds", loc.Query().Get("flash"))

	resp = env.post("/settings/clear", url.Values{})
	assert.Equal(t, "/auth", location(t, resp).Path)
	ok, err := env.tokens.HasToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.mux.HandleFunc("GET "+constants.PathJobURLs, writeJSON(200, []models.JobURL{{ID: "1", URL: "https://a.example", Status: models.JobURLPending}}))
	env.mux.HandleFunc("GET "+constants.PathApplications, writeJSON(200, []models.Application{}))
	env.mux.HandleFunc("GET "+constants.PathStats, writeJSON(200, models.Stats{TotalApplications: 0}))

	resp := env.get("/export?format=csv")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv; charset=utf-8", string(resp.Header().ContentType()))
	assert.Contains(t, string(resp.Header().Peek("Content-Disposition")), ".csv")
	assert.Contains(t, resp.Body.String(), "job_url,1,")

	resp = env.get("/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCrossSiteFormPostRejected(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	postFrom := func(header, value string) *ut.ResponseRecorder {
		return ut.PerformRequest(env.server.Engine().Engine, http.MethodPost, "/settings/clear", nil,
			ut.Header{Key: "Host", Value: "127.0.0.1:5173"},
			ut.Header{Key: header, Value: value},
		)
	}

	resp := postFrom("Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = postFrom("Origin", "null")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = postFrom("Referer", "https://evil.example/page")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	ok, err := env.tokens.HasToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "跨站请求不应清除本地数据")

	resp = postFrom("Origin", "http://127.0.0.1:5173")
	assert.Equal(t, "/auth", location(t, resp).Path)
	ok, err = env.tokens.HasToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
