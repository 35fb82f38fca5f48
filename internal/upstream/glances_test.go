package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glancesServer(t *testing.T, withSensors bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	payloads := map[string]string{
		"/api/4/cpu":    `{"total": 12.5, "user": 10, "idle": 87.5}`,
		"/api/4/load":   `{"min1": 0.1, "min5": 0.2, "min15": 0.3, "cpucore": 8}`,
		"/api/4/mem":    `{"total": 16000, "available": 4000, "used": 12000, "percent": 75}`,
		"/api/4/fs":     `[{"device_name": "/dev/sda1", "mnt_point": "/", "size": 100, "free": 40, "used": 60, "percent": 60}]`,
		"/api/4/uptime": `"5 days, 1:02:03"`,
	}
	if withSensors {
		payloads["/api/4/sensors"] = `[{"label": "Core 0", "type": "temperature_core", "value": 48, "warning": 90, "critical": 100, "unit": "C"}]`
	}
	for path, body := range payloads {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if user, pass, ok := r.BasicAuth(); ok && (user != "admin" || pass != "secret") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSample(t *testing.T) {
	srv := glancesServer(t, true)

	s, err := New(srv.URL+"/", 4, time.Second).Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12.5, s.CPU.Total)
	assert.Equal(t, 0.3, s.Load.Min15)
	assert.Equal(t, uint64(4000), s.Mem.Available)
	require.Len(t, s.FS, 1)
	assert.Equal(t, "/", s.FS[0].MountPoint)
	assert.Equal(t, "5 days, 1:02:03", s.Uptime)
	require.Len(t, s.Sensors, 1)
	assert.Equal(t, 90.0, s.Sensors[0].Warning)
}

func TestSampleWithoutSensorsPlugin(t *testing.T) {
	srv := glancesServer(t, false)

	s, err := New(srv.URL, 4, time.Second).Sample(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Sensors)
	assert.Equal(t, 12.5, s.CPU.Total)
}

func TestSampleWrongVersion(t *testing.T) {
	srv := glancesServer(t, true)

	_, err := New(srv.URL, 4, time.Second).WithVersion(3).Sample(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSampleBasicAuth(t *testing.T) {
	srv := glancesServer(t, true)

	c := New(srv.URL, 4, time.Second)
	c.Username, c.Password = "admin", "wrong"
	_, err := c.Sample(context.Background())
	assert.ErrorContains(t, err, "status 401")

	c.Password = "secret"
	_, err = c.Sample(context.Background())
	assert.NoError(t, err)
}

func TestWithVersionLeavesReceiver(t *testing.T) {
	c := New("http://glances", 0, time.Second)
	assert.Equal(t, 4, c.Version)
	assert.Equal(t, 3, c.WithVersion(3).Version)
	assert.Equal(t, 4, c.WithVersion(0).Version)
	assert.Equal(t, 4, c.Version)
}
