// Package covers optionally mirrors record cover images next to the
// database, resized to a sane width for browsing.
package covers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const defaultMaxWidth = 500

// Downloader fetches cover images into a local directory, one jpg per
// OCLC identifier.
type Downloader struct {
	client   *http.Client
	dir      string
	maxWidth int
}

// New creates a Downloader saving covers under dir. maxWidth <= 0 uses the
// default.
func New(dir string, maxWidth int) *Downloader {
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	return &Downloader{
		client:   &http.Client{Timeout: 30 * time.Second},
		dir:      dir,
		maxWidth: maxWidth,
	}
}

// Download fetches coverURL, resizes it to fit the configured width and
// saves it as {oclcID}.jpg. An existing file is kept as-is. Returns the
// local path and whether a new file was written.
func (d *Downloader) Download(ctx context.Context, oclcID int64, coverURL string) (string, bool, error) {
	if coverURL == "" {
		return "", false, nil
	}

	savePath := filepath.Join(d.dir, fmt.Sprintf("%d.jpg", oclcID))
	if _, err := os.Stat(savePath); err == nil {
		return savePath, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, coverURL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return "", false, fmt.Errorf("failed to decode cover image: %w", err)
	}

	if img.Bounds().Dx() > d.maxWidth {
		img = imaging.Resize(img, d.maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create cover directory: %w", err)
	}

	if err := imaging.Save(img, savePath, imaging.JPEGQuality(85)); err != nil {
		return "", false, fmt.Errorf("failed to save cover: %w", err)
	}
	return savePath, true, nil
}
