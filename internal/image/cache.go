// Package image obtains and extracts the versioned mesh core and agent
// binary distributions.
package image

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/meshworks/meshbox/internal/artifact"
	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/system"
)

// Kind selects between the two halves of the distribution. Both kinds run
// the identical resolve/extract algorithm, parameterized by kind only.
type Kind string

const (
	KindCore  Kind = "core"
	KindAgent Kind = "agent"
)

// PackageName is the artifact service package for this kind.
func (k Kind) PackageName() string {
	if k == KindAgent {
		return "mesh-agent"
	}
	return "mesh"
}

// ArchiveName is the cache filename for this kind at a version.
func (k Kind) ArchiveName(version string) string {
	return fmt.Sprintf("%s-%s.tgz", k.PackageName(), version)
}

// ClientFunc lazily constructs an artifact client. It is invoked at most
// once per Obtain, and only if a download is actually needed, so cache hits
// never touch credentials or the network.
type ClientFunc func() (artifact.Client, error)

// Cache resolves archives from the local image directory, downloading the
// missing ones, and extracts them into clean per-kind directories.
type Cache struct {
	fs        system.FileSystem
	newClient ClientFunc
	log       *slog.Logger
}

// NewCache creates a Cache reading through to the artifact service.
func NewCache(fs system.FileSystem, newClient ClientFunc, log *slog.Logger) *Cache {
	return &Cache{fs: fs, newClient: newClient, log: log}
}

// Obtain resolves the core and agent archives for version into imageDir and
// extracts them, returning the two extraction directories. Extraction always
// runs, even for cache hits, since extraction output is not itself cached.
func (c *Cache) Obtain(ctx context.Context, imageDir, version string) (coreDir, agentDir string, err error) {
	corePath := c.resolveFromCache(imageDir, KindCore, version)
	agentPath := c.resolveFromCache(imageDir, KindAgent, version)

	if corePath == "" || agentPath == "" {
		client, err := c.newClient()
		if err != nil {
			return "", "", err
		}

		if corePath == "" {
			if corePath, err = c.download(ctx, client, imageDir, KindCore, version); err != nil {
				return "", "", err
			}
		}
		if agentPath == "" {
			if agentPath, err = c.download(ctx, client, imageDir, KindAgent, version); err != nil {
				return "", "", err
			}
		}
	}

	if coreDir, err = c.extract(corePath, filepath.Join(imageDir, string(KindCore)), KindCore); err != nil {
		return "", "", err
	}
	if agentDir, err = c.extract(agentPath, filepath.Join(imageDir, string(KindAgent)), KindAgent); err != nil {
		return "", "", err
	}

	return coreDir, agentDir, nil
}

// resolveFromCache returns the cached archive path for the kind, or "" when
// the archive has not been downloaded yet.
func (c *Cache) resolveFromCache(imageDir string, kind Kind, version string) string {
	path := filepath.Join(imageDir, kind.ArchiveName(version))
	if c.fs.Exists(path) {
		c.log.Debug("archive resolved from cache", "kind", kind, "path", path)
		return path
	}
	return ""
}

func (c *Cache) download(ctx context.Context, client artifact.Client, imageDir string, kind Kind, version string) (string, error) {
	path, err := client.Download(ctx, kind.PackageName(), version, imageDir)
	if err != nil {
		switch {
		case stderrors.Is(err, artifact.ErrNotFound):
			return "", errors.ArtifactNotFound(string(kind), version)
		case stderrors.Is(err, artifact.ErrUnreachable):
			return "", errors.ArtifactUnreachable(err)
		default:
			return "", err
		}
	}
	return path, nil
}
