package images

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sjsage522/newsextractor/helpers"
	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"
	"sjsage522/newsextractor/services/cache"

	"golang.org/x/time/rate"
)

const (
	// cacheTTL is how long downloaded picture bytes stay cached
	cacheTTL = 24 * time.Hour

	// at most 5 picture requests per second, bursts of 4
	defaultRate  = 5
	defaultBurst = 4
)

// FetchFunc retrieves the bytes behind a URL
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Downloader saves pictures into a directory, consulting a byte cache first
type Downloader struct {
	dir     string
	cache   cache.CacheService
	fetch   FetchFunc
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewDownloader creates a downloader writing into dir. cache and fetch may
// be nil for no caching and helpers.FetchBytes respectively.
func NewDownloader(dir string, c cache.CacheService, fetch FetchFunc, log *logger.Logger) *Downloader {
	if fetch == nil {
		fetch = helpers.FetchBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Downloader{
		dir:     dir,
		cache:   c,
		fetch:   fetch,
		limiter: rate.NewLimiter(defaultRate, defaultBurst),
		log:     log.For("images"),
	}
}

// SetRateLimit changes how many picture requests are sent per second
func (d *Downloader) SetRateLimit(perSecond float64, burst int) {
	d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Download stores the picture at url as dir/filename and returns filename
func (d *Downloader) Download(ctx context.Context, url, filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", apperrors.NewDownload("images", "invalid filename "+filename, nil)
	}

	data, err := d.load(ctx, url)
	if err != nil {
		return "", apperrors.NewDownload("images", "fetch "+url, err)
	}

	if err := writeAtomic(filepath.Join(d.dir, filename), data); err != nil {
		return "", apperrors.NewDownload("images", "save "+filename, err)
	}
	return filename, nil
}

func (d *Downloader) load(ctx context.Context, url string) ([]byte, error) {
	if d.cache != nil {
		data, err := d.cache.Get(url)
		if err == nil && len(data) > 0 {
			d.log.Debug().Str("url", url).Msg("Picture served from cache")
			return data, nil
		}
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			d.log.Warn().Err(err).Msg("Picture cache unavailable")
		}
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := d.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(url, data, cacheTTL); err != nil {
			d.log.Warn().Err(err).Msg("Failed to cache picture")
		}
	}
	return data, nil
}

// writeAtomic writes data next to path and renames it into place
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
