// Package epa fetches the EPA SDWA bulk download archive.
package epa

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsafePath means an archive entry would be written outside the target directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// ArchiveName is the file name the downloaded archive is saved under.
const ArchiveName = "SDWA_latest_downloads.zip"

// Downloader streams the archive to disk and unpacks it.
type Downloader struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDownloader creates a Downloader. timeout bounds the whole transfer.
func NewDownloader(url string, timeout time.Duration, logger *slog.Logger) *Downloader {
	return &Downloader{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads the archive into dir and extracts it there, returning the
// extracted file paths.
func (d *Downloader) Fetch(ctx context.Context, dir string) ([]string, error) {
	archive, err := d.Download(ctx, dir)
	if err != nil {
		return nil, err
	}
	return Extract(archive, dir)
}

// Download saves the archive as dir/ArchiveName. The file only appears once
// the transfer completed.
func (d *Downloader) Download(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ArchiveName+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	start := time.Now()
	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}

	dest := filepath.Join(dir, ArchiveName)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move archive into place: %w", err)
	}
	d.logger.Info("archive downloaded",
		"url", d.url,
		"path", dest,
		"size_mb", fmt.Sprintf("%.1f", float64(n)/1024/1024),
		"duration", time.Since(start),
	)
	return dest, nil
}

// Extract unpacks every file in the zip at archive into dir. Entries whose
// path would land outside dir are rejected before anything is written.
func Extract(archive, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		zr.Close() //nolint:errcheck // read-only
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if _, err := safeJoin(dir, f.Name); err != nil {
			return nil, err
		}
	}

	var out []string
	for _, f := range zr.File {
		target, _ := safeJoin(dir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return out, fmt.Errorf("create %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	return out, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	_, err = io.Copy(dst, rc)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

func safeJoin(dir, name string) (string, error) {
	local := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dir, local), nil
}
