package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/version"
)

// DownloadError reports a failed archive fetch. StatusCode is zero when no
// response was received.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download of %s failed: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Suggestion implements errmsg.Suggester.
func (e *DownloadError) Suggestion() string {
	if e.StatusCode == http.StatusNotFound {
		return "The release archive is not published; run 'g4install versions' to list available releases"
	}
	return "Check your internet connection and re-run; a partially downloaded archive is discarded"
}

// Downloader fetches release archives.
type Downloader struct {
	Client *http.Client
	// Progress is where the byte bar renders; nil disables it.
	Progress io.Writer
	Logger   log.Logger
}

// NewDownloader creates a downloader that shows a progress bar on out when
// stdout is a terminal.
func NewDownloader(client *http.Client, out io.Writer, logger log.Logger) *Downloader {
	d := &Downloader{Client: client, Logger: log.OrDefault(logger)}
	if out != nil && progress.ShouldShowProgress() {
		d.Progress = out
	}
	return d
}

// Download fetches url into destPath. The body is streamed to a temporary
// file in the same directory and renamed into place, so destPath is either
// complete or absent.
func (d *Downloader) Download(ctx context.Context, url, destPath string) error {
	if !strings.HasPrefix(url, "https://") {
		return &DownloadError{URL: url, Err: fmt.Errorf("download URL must use HTTPS")}
	}
	logger := log.OrDefault(d.Logger)
	logger.Debug("download starting", "url", url, "dest", destPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := d.Client.Do(req)
	if err != nil {
		return &DownloadError{URL: url, Err: version.WrapNetworkError(err, "download", "request failed")}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return &DownloadError{URL: url, Err: fmt.Errorf("compressed responses not supported (got %s)", enc)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	bar := progress.NewBytesBar(resp.ContentLength, filepath.Base(destPath), d.Progress, d.Progress != nil)
	n, err := io.Copy(io.MultiWriter(tmp, bar), resp.Body)
	_ = bar.Finish()
	if err != nil {
		tmp.Close()
		return &DownloadError{URL: url, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return &DownloadError{URL: url, Err: fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength)}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	logger.Debug("download complete", "dest", destPath, "bytes", n)
	return nil
}
