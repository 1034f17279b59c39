package installer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"zsh-setup/internal/logger"
)

// Downloader fetches a URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// HTTPDownloader downloads over HTTP(S) with net/http.
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader returns a downloader using http.DefaultClient.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{Client: http.DefaultClient}
}

// Download saves the content located at url to destPath.
// It returns an error if the request, the status code or the file write fails.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", destPath, err)
	}

	logger.Debug("[DEBUG] Downloaded %s to: %s\n", url, destPath)
	return nil
}

// pathExists reports whether p exists. Errors other than "not exist"
// are returned so callers never mistake an unreadable path for a missing one.
func pathExists(p string) (bool, error) {
	_, err := os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// copyFile copies a file from src to dst, preserving permissions.
// It creates any missing directories in the destination path and
// truncates dst if it already exists.
func copyFile(src, dst string, modeOverride os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	// Use override if provided, otherwise preserve source mode
	if modeOverride != 0 {
		return os.Chmod(dst, modeOverride)
	}
	stat, err := in.Stat()
	if err != nil {
		return err
	}
	return os.Chmod(dst, stat.Mode().Perm())
}

// copyDir recursively copies the tree at src to dst. Symlinks are
// recreated rather than followed.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case d.Type().IsRegular():
			return copyFile(path, target, 0)
		default:
			logger.Debug("[DEBUG] Skipping special file %s\n", path)
			return nil
		}
	})
}
