// Package fetch polls the widget API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("widget api: status %d", e.Code)
	}
	return fmt.Sprintf("widget api: status %d: %s", e.Code, e.Body)
}

// Client fetches samples. Concurrent requests for the same URL share one
// round trip.
type Client struct {
	HTTP  *http.Client
	group singleflight.Group
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// URL builds the endpoint for a widget: <endpoint>/api/widgets/<provider>?<query>.
func URL(w config.Widget) string {
	return strings.TrimRight(w.Endpoint, "/") + "/api/widgets/" + w.Provider + "?" + w.Query().Encode()
}

// Fetch issues one GET for the widget. A payload carrying an error marker
// is returned as is; callers decide how to present it.
func (c *Client) Fetch(ctx context.Context, w config.Widget) (*model.Sample, error) {
	u := URL(w)
	// the round trip is shared, so one caller giving up must not fail the rest
	shareCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(u, func() (interface{}, error) {
		return c.get(shareCtx, u)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("Fetch shared", "url", u)
	}
	samp := *v.(*model.Sample)
	return &samp, nil
}

func (c *Client) get(ctx context.Context, u string) (*model.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var samp model.Sample
	if err := json.NewDecoder(resp.Body).Decode(&samp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &samp, nil
}

// Result is the outcome of one poll.
type Result struct {
	Sample *model.Sample
	Err    error
	At     time.Time
}

// Poller fetches one widget's data on its refresh interval.
type Poller struct {
	client *Client
	widget config.Widget
}

func NewPoller(c *Client, w config.Widget) *Poller {
	return &Poller{client: c, widget: w}
}

// Stream polls immediately and then every refresh interval until ctx is
// done. A failed poll is reported and the next tick tries again.
func (p *Poller) Stream(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.widget.RefreshInterval)
		defer ticker.Stop()
		for {
			samp, err := p.client.Fetch(ctx, p.widget)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				slog.Debug("Poll failed", "endpoint", p.widget.Endpoint, "err", err)
			}
			select {
			case ch <- Result{Sample: samp, Err: err, At: time.Now()}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
