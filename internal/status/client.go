// Package status polls a freshly launched core node until its cluster
// membership endpoint answers.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meshworks/meshbox/internal/sandbox"
)

// DefaultRetryInterval is the pause between membership polls.
const DefaultRetryInterval = time.Second

// Client waits for a sandbox core node to start serving.
type Client struct {
	httpClient    *http.Client
	retryInterval time.Duration
	port          int
	log           *slog.Logger
}

// NewClient returns a Client polling every retryInterval. A non-positive
// interval falls back to DefaultRetryInterval.
func NewClient(retryInterval time.Duration, log *slog.Logger) *Client {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		retryInterval: retryInterval,
		port:          sandbox.StatusPort,
		log:           log,
	}
}

// membersURL is the cluster membership endpoint of the core node at host.
func (c *Client) membersURL(host string) string {
	return fmt.Sprintf("%s://%s:%d/members", sandbox.DefaultScheme, host, c.port)
}

// WaitReady polls the core node's membership endpoint until it answers with
// a 2xx status, the timeout elapses, or ctx is cancelled. It returns nil
// once the node is serving.
func (c *Client) WaitReady(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.membersURL(host)
	ticker := time.NewTicker(c.retryInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if c.poll(ctx, url) {
			c.log.Debug("core node is serving", "url", url, "attempt", attempt)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("core node at %s did not respond within %s", url, timeout)
		case <-ticker.C:
		}
	}
}

func (c *Client) poll(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("membership poll failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
