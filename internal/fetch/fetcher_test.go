package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T, status int, body []byte, contentType string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchDownloadsStreamsAndHashes(t *testing.T) {
	t.Parallel()

	body := []byte("%PDF-1.7 fake meeting document")
	srv, hits := newCountingServer(t, http.StatusOK, body, "application/pdf")

	f := New(Config{RPS: 0, UserAgent: "harvester-test"})
	defer f.Close()

	target := filepath.Join(t.TempDir(), "full.pdf")
	ref, err := f.Fetch(context.Background(), srv.URL+"/doc", target)
	require.NoError(t, err)

	wantSum := sha256.Sum256(body)
	assert.Equal(t, srv.URL+"/doc", ref.URL)
	assert.Equal(t, target, ref.Path)
	assert.Equal(t, hex.EncodeToString(wantSum[:]), ref.SHA256)
	assert.Equal(t, int64(len(body)), ref.Size)
	assert.Equal(t, "application/pdf", ref.Mime)
	assert.EqualValues(t, 1, hits.Load())

	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, body, onDisk)
}

func TestFetchIsIdempotent(t *testing.T) {
	t.Parallel()

	body := []byte("bytes")
	srv, hits := newCountingServer(t, http.StatusOK, body, "application/pdf")

	f := New(Config{})
	defer f.Close()

	target := filepath.Join(t.TempDir(), "item.pdf")
	first, err := f.Fetch(context.Background(), srv.URL, target)
	require.NoError(t, err)

	second, err := f.Fetch(context.Background(), srv.URL, target)
	require.NoError(t, err)

	// The second call must be satisfied from disk.
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, first.SHA256, second.SHA256)
	assert.Equal(t, first.Size, second.Size)
}

func TestFetchSkipsPreexistingTarget(t *testing.T) {
	t.Parallel()

	srv, hits := newCountingServer(t, http.StatusOK, []byte("never served"), "")

	target := filepath.Join(t.TempDir(), "attachment.pdf")
	existing := []byte("previously downloaded")
	require.NoError(t, os.WriteFile(target, existing, 0o600))

	f := New(Config{})
	defer f.Close()

	ref, err := f.Fetch(context.Background(), srv.URL, target)
	require.NoError(t, err)

	wantSum := sha256.Sum256(existing)
	assert.EqualValues(t, 0, hits.Load())
	assert.Equal(t, hex.EncodeToString(wantSum[:]), ref.SHA256)
	assert.Equal(t, int64(len(existing)), ref.Size)
}

func TestFetchForceRedownloads(t *testing.T) {
	t.Parallel()

	fresh := []byte("edited meeting document")
	srv, hits := newCountingServer(t, http.StatusOK, fresh, "")

	target := filepath.Join(t.TempDir(), "full.pdf")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o600))

	f := New(Config{Force: true})
	defer f.Close()

	ref, err := f.Fetch(context.Background(), srv.URL, target)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, int64(len(fresh)), ref.Size)

	onDisk, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fresh, onDisk)
}

func TestFetchErrorStatusLeavesNoFile(t *testing.T) {
	t.Parallel()

	srv, _ := newCountingServer(t, http.StatusInternalServerError, nil, "")

	f := New(Config{})
	defer f.Close()

	target := filepath.Join(t.TempDir(), "attachment.pdf")
	_, err := f.Fetch(context.Background(), srv.URL, target)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, http.StatusInternalServerError, dlErr.Status)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchTransportErrorWrapped(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: 500 * time.Millisecond})
	defer f.Close()

	target := filepath.Join(t.TempDir(), "x.pdf")
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/none", target)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Zero(t, dlErr.Status)
	assert.Error(t, errors.Unwrap(dlErr))
}

func TestFetchRateLimitSpacing(t *testing.T) {
	t.Parallel()

	srv, _ := newCountingServer(t, http.StatusOK, []byte("x"), "")

	const rps = 50.0
	f := New(Config{RPS: rps})
	defer f.Close()

	dir := t.TempDir()
	const n = 3
	start := time.Now()
	for i := 0; i < n; i++ {
		target := filepath.Join(dir, "items", string(rune('a'+i))+".pdf")
		_, err := f.Fetch(context.Background(), srv.URL, target)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	minElapsed := time.Duration(float64((n-1)) / rps * float64(time.Second))
	assert.GreaterOrEqual(t, elapsed, minElapsed,
		"N sequential fetches must take at least (N-1)/rps")
}

func TestFetchCacheHitConsumesNoRateSlot(t *testing.T) {
	t.Parallel()

	srv, _ := newCountingServer(t, http.StatusOK, []byte("x"), "")

	f := New(Config{RPS: 2}) // 500ms spacing would dominate the test
	defer f.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "a.pdf")
	_, err := f.Fetch(context.Background(), srv.URL, target)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := f.Fetch(context.Background(), srv.URL, target)
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 400*time.Millisecond,
		"cache hits must not wait on the limiter")
}
