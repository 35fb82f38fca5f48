package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
)

type fakeLocal struct{ sample model.Sample }

func (f fakeLocal) Latest(context.Context) model.Sample { return f.sample }

func serverConfig(glancesURL string) config.Server {
	cfg := config.DefaultServer()
	cfg.GlancesURL = glancesURL
	cfg.Timeout = time.Second
	return cfg
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, model.Sample) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var s model.Sample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return rec, s
}

func TestLocalProvider(t *testing.T) {
	local := fakeLocal{sample: model.Sample{CPU: model.CPU{Total: 33}, Uptime: "1:00:00"}}
	srv := NewServer(serverConfig(""), local)

	rec, s := get(t, srv.Handler(), "/api/widgets/local?lang=en&disk=%2F")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 33.0, s.CPU.Total)
	assert.False(t, s.HasError())
}

func TestGlancesProviderProxies(t *testing.T) {
	var mu sync.Mutex
	var gotPaths []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPaths = append(gotPaths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/3/cpu":
			w.Write([]byte(`{"total": 21}`))
		case "/api/3/uptime":
			w.Write([]byte(`"2:00:00"`))
		case "/api/3/fs", "/api/3/sensors":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer upstream.Close()

	srv := NewServer(serverConfig(upstream.URL), nil)
	rec, s := get(t, srv.Handler(), "/api/widgets/glances?version=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 21.0, s.CPU.Total)
	assert.Equal(t, "2:00:00", s.Uptime)
	assert.Contains(t, gotPaths, "/api/3/mem")
}

func TestGlancesProviderUnconfigured(t *testing.T) {
	srv := NewServer(serverConfig(""), nil)
	rec, s := get(t, srv.Handler(), "/api/widgets/glances")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, s.HasError())
}

func TestGlancesProviderUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	srv := NewServer(serverConfig(upstream.URL), nil)
	rec, s := get(t, srv.Handler(), "/api/widgets/glances")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, s.HasError())
}

func TestUnknownProvider(t *testing.T) {
	srv := NewServer(serverConfig(""), fakeLocal{})
	rec, s := get(t, srv.Handler(), "/api/widgets/prometheus")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, s.HasError())
	assert.Contains(t, string(s.Error), "prometheus")
}

func TestHealth(t *testing.T) {
	srv := NewServer(serverConfig(""), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := serverConfig("")
	cfg.Listen = "127.0.0.1:0"
	srv := NewServer(cfg, fakeLocal{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestGlancesProviderDefaultVersion(t *testing.T) {
	var mu sync.Mutex
	var gotPaths []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPaths = append(gotPaths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/2/uptime":
			w.Write([]byte(`"0:10:00"`))
		case "/api/2/fs", "/api/2/sensors":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer upstream.Close()

	cfg := serverConfig(upstream.URL)
	cfg.GlancesVersion = 2
	srv := NewServer(cfg, nil)

	rec, s := get(t, srv.Handler(), "/api/widgets/glances?lang=de&disk=%2F")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0:10:00", s.Uptime)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, gotPaths, "/api/2/cpu")
	assert.NotContains(t, gotPaths, "/api/4/cpu")
}
