// Package fetch implements the rate-limited, idempotent artifact
// downloader. A target path that already exists is never fetched again:
// its hash and size are recomputed from disk and returned, consuming
// neither a network request nor a rate-limit slot.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/waja/dagsorden-harvester/internal/meeting"
	"github.com/waja/dagsorden-harvester/internal/telemetry"
)

const defaultTimeout = 60 * time.Second

// Config captures the parameters for one fetcher instance. A fetcher is
// opened once per meeting ingestion and closed at the end of it.
type Config struct {
	// RPS is the request budget shared by all downloads through this
	// fetcher. Non-positive disables throttling.
	RPS float64
	// UserAgent and Referer are sent on every request.
	UserAgent string
	Referer   string
	// Force bypasses the skip-if-exists check and re-downloads even
	// when the target path is already materialized.
	Force bool
	// Timeout bounds a single download. Defaults to 60s.
	Timeout time.Duration
}

// Fetcher downloads artifacts to disk, streaming and hashing in a
// single pass. It performs no retries; retry policy belongs to callers.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	limiter *Limiter
}

// New builds a fetcher with its own HTTP client.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: NewLimiter(cfg.RPS),
	}
}

// Close releases the fetcher's idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// DownloadError reports a failed artifact download. Status is zero for
// transport-level failures.
type DownloadError struct {
	URL    string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Fetch materializes url at target and returns the populated FileRef.
// If target already exists (and Force is off) the bytes are hashed from
// disk and returned without any network activity. A fresh download is
// streamed through a temp file and renamed into place, so a partial
// transfer never satisfies a later exists check.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, target string) (meeting.FileRef, error) {
	if !f.cfg.Force {
		if ref, ok, err := fromDisk(rawURL, target); err != nil {
			return meeting.FileRef{}, err
		} else if ok {
			telemetry.CountDownload(telemetry.OutcomeCacheHit)
			return ref, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return meeting.FileRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return meeting.FileRef{}, fmt.Errorf("create artifact dir for %s: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return meeting.FileRef{}, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.Referer != "" {
		req.Header.Set("Referer", f.cfg.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		telemetry.CountDownload(telemetry.OutcomeError)
		return meeting.FileRef{}, &DownloadError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		telemetry.CountDownload(telemetry.OutcomeError)
		return meeting.FileRef{}, &DownloadError{
			URL:    rawURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	sum, size, err := f.streamToFile(resp.Body, target)
	if err != nil {
		telemetry.CountDownload(telemetry.OutcomeError)
		return meeting.FileRef{}, &DownloadError{URL: rawURL, Err: err}
	}

	telemetry.CountDownload(telemetry.OutcomeOK)
	telemetry.AddDownloadBytes(size)
	return meeting.FileRef{
		URL:    rawURL,
		Path:   target,
		SHA256: sum,
		Size:   size,
		Mime:   resp.Header.Get("Content-Type"),
	}, nil
}

// streamToFile copies body to target while hashing, without buffering
// the payload in memory.
func (f *Fetcher) streamToFile(body io.Reader, target string) (string, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".part-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp for %s: %w", target, err)
	}
	tmpName := tmp.Name()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", 0, fmt.Errorf("stream to %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", 0, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", 0, fmt.Errorf("publish %s: %w", target, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// fromDisk returns a FileRef for an already-materialized target, or
// ok=false when the file does not exist.
func fromDisk(rawURL, target string) (meeting.FileRef, bool, error) {
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return meeting.FileRef{}, false, nil
		}
		return meeting.FileRef{}, false, fmt.Errorf("stat %s: %w", target, err)
	}
	if info.IsDir() {
		return meeting.FileRef{}, false, fmt.Errorf("target %s is a directory", target)
	}

	file, err := os.Open(target)
	if err != nil {
		return meeting.FileRef{}, false, fmt.Errorf("open %s: %w", target, err)
	}
	defer file.Close()

	h := sha256.New()
	size, err := io.Copy(h, file)
	if err != nil {
		return meeting.FileRef{}, false, fmt.Errorf("hash %s: %w", target, err)
	}
	return meeting.FileRef{
		URL:    rawURL,
		Path:   target,
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   size,
	}, true, nil
}
