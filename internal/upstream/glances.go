// Package upstream reads metrics from a Glances REST API.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
)

var ErrNotFound = errors.New("glances: endpoint not found")

// Client talks to one Glances server.
type Client struct {
	BaseURL  string
	Version  int
	Username string
	Password string
	HTTP     *http.Client
}

func New(baseURL string, version int, timeout time.Duration) *Client {
	if version <= 0 {
		version = 4
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Version: version,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// WithVersion returns a copy of c targeting another API version.
func (c *Client) WithVersion(version int) *Client {
	cp := *c
	if version > 0 {
		cp.Version = version
	}
	return &cp
}

func (c *Client) endpoint(plugin string) string {
	return c.BaseURL + "/api/" + strconv.Itoa(c.Version) + "/" + plugin
}

func (c *Client) get(ctx context.Context, plugin string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(plugin), nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", plugin, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("glances %s: %w", plugin, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, plugin)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("glances %s: status %d: %s", plugin, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding glances %s: %w", plugin, err)
	}
	return nil
}

// Sample gathers cpu, load, mem, fs, sensors and uptime into one sample.
// Sensors are optional since the plugin is often disabled.
func (c *Client) Sample(ctx context.Context) (*model.Sample, error) {
	var s model.Sample
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, "cpu", &s.CPU) })
	g.Go(func() error { return c.get(gctx, "load", &s.Load) })
	g.Go(func() error { return c.get(gctx, "mem", &s.Mem) })
	g.Go(func() error { return c.get(gctx, "fs", &s.FS) })
	g.Go(func() error { return c.get(gctx, "uptime", &s.Uptime) })
	g.Go(func() error {
		if err := c.get(gctx, "sensors", &s.Sensors); err != nil {
			if errors.Is(err, ErrNotFound) {
				slog.Debug("Glances sensors plugin disabled")
				return nil
			}
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}
