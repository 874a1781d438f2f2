package image

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/meshworks/meshbox/internal/logging"
)

// extract unpacks the archive into dir, destroying any previous extraction
// first. The upstream archives wrap everything one directory deeper than the
// desired layout, so the top-level wrapper directory is merged up afterwards.
func (c *Cache) extract(archivePath, dir string, kind Kind) (string, error) {
	if c.fs.Exists(dir) {
		if err := c.fs.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("emptying extraction dir %s: %w", dir, err)
		}
	}
	if err := c.fs.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating extraction dir %s: %w", dir, err)
	}

	logging.UserInfo("Extracting mesh %s to %s", kind, dir)
	if err := untar(archivePath, dir); err != nil {
		return "", fmt.Errorf("extracting %s: %w", archivePath, err)
	}

	if err := c.flatten(archivePath, dir); err != nil {
		return "", err
	}

	return dir, nil
}

// flatten merges the archive's own top-level directory up into dir and
// removes it. The wrapper is named after the archive's base filename; if the
// archive was built with a different wrapper name, a sole top-level
// directory is merged instead.
func (c *Cache) flatten(archivePath, dir string) error {
	base := strings.TrimSuffix(filepath.Base(archivePath), ".tgz")
	wrapper := filepath.Join(dir, base)

	if !c.fs.Exists(wrapper) {
		entries, err := c.fs.ReadDir(dir)
		if err != nil {
			return err
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return nil
		}
		wrapper = filepath.Join(dir, entries[0].Name())
	}

	entries, err := c.fs.ReadDir(wrapper)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := c.fs.Rename(filepath.Join(wrapper, entry.Name()), filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("flattening %s: %w", wrapper, err)
		}
	}

	return c.fs.Remove(wrapper)
}

// untar unpacks a gzipped tarball into dst. Entry paths are contained to dst
// so a malicious archive cannot write outside the extraction directory.
func untar(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := securejoin.SecureJoin(dst, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// The link target must stay inside dst too; securejoin only
			// contains the entry path itself.
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("symlink %s has an absolute target %s", hdr.Name, hdr.Linkname)
			}
			resolved := filepath.Join(filepath.Dir(target), hdr.Linkname)
			if resolved != dst && !strings.HasPrefix(resolved, dst+string(os.PathSeparator)) {
				return fmt.Errorf("symlink %s targets %s outside the extraction dir", hdr.Name, hdr.Linkname)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}
