package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	apperrors "sjsage522/newsextractor/pkg/errors"
	"sjsage522/newsextractor/services/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "pictures")
	d := NewDownloader(dir, cache.NewMemoryCache(), nil, nil)
	ctx := context.Background()

	name, err := d.Download(ctx, server.URL+"/a.jpg", "ClimateTalksStall-1a2b3c4d.jpg")
	require.NoError(t, err)
	assert.Equal(t, "ClimateTalksStall-1a2b3c4d.jpg", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	// second download of the same URL is served from the cache
	_, err = d.Download(ctx, server.URL+"/a.jpg", "copy.jpg")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = d.Download(ctx, server.URL+"/missing.jpg", "missing.jpg")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDownload))
	assert.NoFileExists(t, filepath.Join(dir, "missing.jpg"))
}

func TestDownloadRejectsPaths(t *testing.T) {
	d := NewDownloader(t.TempDir(), nil, func(context.Context, string) ([]byte, error) {
		return []byte("x"), nil
	}, nil)

	for _, name := range []string{"", "../escape.jpg", "nested/file.jpg"} {
		_, err := d.Download(context.Background(), "https://example.com/a.jpg", name)
		assert.Error(t, err, "filename %q", name)
	}
}

func TestDownloadLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(dir, nil, func(context.Context, string) ([]byte, error) {
		return []byte("png"), nil
	}, nil)

	_, err := d.Download(context.Background(), "https://example.com/a.png", "a.png")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())
}

func TestDownloadHonoursCancellation(t *testing.T) {
	d := NewDownloader(t.TempDir(), nil, func(context.Context, string) ([]byte, error) {
		return []byte("x"), nil
	}, nil)
	d.SetRateLimit(0.001, 1)

	ctx := context.Background()
	_, err := d.Download(ctx, "https://example.com/a.jpg", "a.jpg")
	require.NoError(t, err)

	// the burst is spent; the next request has to wait far beyond the deadline
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = d.Download(ctx, "https://example.com/b.jpg", "b.jpg")
	assert.Error(t, err)
}
