// Package artifact downloads versioned mesh binary archives from the
// credentialed artifact service.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the download root of the hosted artifact service.
const DefaultBaseURL = "https://downloads.meshworks.io/mesh"

// Sentinel errors for download failure classification. Callers must be able
// to tell "try again later" (unreachable) from "this version does not exist"
// (not found).
var (
	ErrUnreachable = errors.New("artifact service unreachable")
	ErrNotFound    = errors.New("artifact not found")
)

// Client resolves a package archive for a version into a local file.
type Client interface {
	// Download fetches <pkg>-<version>.tgz into destDir and returns the
	// final path of the downloaded archive.
	Download(ctx context.Context, pkg, version, destDir string) (string, error)
}

// HTTPClient downloads archives over authenticated HTTP.
type HTTPClient struct {
	baseURL string
	creds   Credentials
	client  *http.Client
	out     io.Writer
	log     *slog.Logger
}

// NewHTTPClient creates a Client downloading from baseURL with the given
// credentials. Progress is rendered to out when the archive size is known.
func NewHTTPClient(baseURL string, creds Credentials, out io.Writer, log *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		creds:   creds,
		client:  &http.Client{Timeout: 30 * time.Minute},
		out:     out,
		log:     log,
	}
}

// Download streams the archive to a uniquely named temp file in destDir and
// atomically renames it to the final cache path once complete, so a partial
// download never masquerades as a cached archive.
func (c *HTTPClient) Download(ctx context.Context, pkg, version, destDir string) (string, error) {
	filename := fmt.Sprintf("%s-%s.tgz", pkg, version)
	url := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, pkg, version, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	c.log.Debug("downloading artifact", "url", url)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, pkg, version)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("artifact service returned %s for %s", resp.Status, url)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	finalPath := filepath.Join(destDir, filename)
	tmpPath := fmt.Sprintf("%s.%s.tmp", finalPath, uuid.NewString())

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}

	var body io.Reader = resp.Body
	if c.out != nil && resp.ContentLength > 0 {
		body = io.TeeReader(resp.Body, newProgressWriter(c.out, filename, resp.ContentLength))
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	c.log.Debug("artifact downloaded", "path", finalPath)
	return finalPath, nil
}
