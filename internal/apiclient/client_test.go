package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobflow-dashboard/internal/credentials"
	"jobflow-dashboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	c := New("https://api.example.com/", nil)

	assert.Equal(t, "https://api.example.com/api/stats", c.ResolveURL("/api/stats"))
	assert.Equal(t, "https://bucket.example.com/put", c.ResolveURL("https://bucket.example.com/put"))
	assert.Equal(t, "HTTP://other.example.com/x", c.ResolveURL("HTTP://other.example.com/x"), "协议前缀不区分大小写")
}

func TestRequestHeadersAndBody(t *testing.T) {
	type captured struct {
		method, contentType, auth, body string
	}
	var got captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = captured{r.Method, r.Header.Get("Content-Type"), r.Header.Get("Authorization"), string(data)}
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, credentials.Static("tok"))
	ctx := context.Background()

	resp, err := c.Request(ctx, http.MethodPost, "/api/job-urls", map[string]string{"url": "https://jobs.example.com/1"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "POST", got.method)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.JSONEq(t, `{"url":"https://jobs.example.com/1"}`, got.body)

	resp, err = c.Request(ctx, http.MethodDelete, "/api/job-urls/7", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, got.contentType, "无请求体时不应设置 Content-Type")
	assert.Empty(t, got.body)

	resp, err = c.Request(ctx, http.MethodGet, "/api/stats", map[string]string{"ignored": "x"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "application/json", got.contentType)
	assert.Empty(t, got.body, "GET 不发送请求体")
}

// TestTokenReadPerRequest 登录和退出后下一次请求立即使用新状态
func TestTokenReadPerRequest(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	ctx := context.Background()
	tokens := credentials.NewTokenStore(storage.NewMemoryStore())
	c := New(srv.URL, tokens)

	_, err := c.Query(ctx, "/api/stats", Throw)
	require.NoError(t, err)
	assert.Empty(t, auth)

	require.NoError(t, tokens.Set(ctx, "first"))
	_, err = c.Query(ctx, "/api/stats", Throw)
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", auth)

	require.NoError(t, tokens.Clear(ctx))
	_, err = c.Query(ctx, "/api/stats", Throw)
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestHTTPErrorFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/body":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("db unavailable"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.Request(context.Background(), http.MethodGet, "/body", nil)
	require.Error(t, err)
	assert.Equal(t, "500: db unavailable", err.Error())
	status, ok := StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, 500, status)

	_, err = c.Request(context.Background(), http.MethodGet, "/empty", nil)
	require.Error(t, err)
	assert.Equal(t, "404: Not Found", err.Error(), "响应体为空时使用状态文本")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsClientError(err))
}

func TestQueryUnauthorizedBehavior(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, credentials.Static("expired"))

	data, err := c.Query(context.Background(), "/api/user-preferences", ReturnNull)
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = c.Query(context.Background(), "/api/user-preferences", Throw)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestDoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"totalApplications": 3})
	}))
	defer srv.Close()

	var out struct {
		TotalApplications int `json:"totalApplications"`
	}
	require.NoError(t, New(srv.URL, nil).Do(context.Background(), http.MethodGet, "/api/stats", nil, &out))
	assert.Equal(t, 3, out.TotalApplications)
}

func TestNetworkErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Request(context.Background(), http.MethodGet, "/api/stats", nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, msgNetwork, UserMessage(err))
	_, ok := StatusOf(err)
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, msgUnauth, UserMessage(&HTTPError{Status: 401, Message: "Unauthorized"}))
	assert.Equal(t, "409: URL already exists", UserMessage(&HTTPError{Status: 409, Message: "URL already exists"}))
	assert.Equal(t, msgTimeout, UserMessage(context.DeadlineExceeded))
	assert.Equal(t, msgTLS, UserMessage(&NetworkError{Err: errors.New("tls: handshake failure")}))
	assert.True(t, strings.HasPrefix(UserMessage(errors.New("boom")), "boom"))
}
