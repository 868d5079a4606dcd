package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

const defaultImageBaseURL = "https://image.tmdb.org/t/p"

// ErrInvalidImagePath indicates a size or path outside the allowed set.
var ErrInvalidImagePath = errors.New("invalid image path")

// allowedSizes are the TMDB size buckets the frontend requests.
var allowedSizes = map[string]bool{
	"w185":     true,
	"w342":     true,
	"w500":     true,
	"w780":     true,
	"w1280":    true,
	"original": true,
}

// Cache downloads catalog poster/backdrop images once and serves them from
// a local filesystem afterwards.
type Cache struct {
	fs         afero.Fs
	dir        string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu sync.Mutex // serializes downloads per cache instance
}

// NewCache creates an image cache rooted at dir on the given filesystem.
func NewCache(fs afero.Fs, dir, baseURL string, logger *slog.Logger) *Cache {
	if baseURL == "" {
		baseURL = defaultImageBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		fs:         fs,
		dir:        dir,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

// Get returns the image bytes and a sniffed content type, downloading and
// caching on first request.
func (c *Cache) Get(ctx context.Context, size, name string) ([]byte, string, error) {
	if !allowedSizes[size] {
		return nil, "", fmt.Errorf("%w: size %q", ErrInvalidImagePath, size)
	}
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, "\\?#") {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidImagePath, name)
	}

	cachePath := path.Join(c.dir, size, name)
	if data, err := afero.ReadFile(c.fs, cachePath); err == nil {
		return data, mimetype.Detect(data).String(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have populated the file while we waited.
	if data, err := afero.ReadFile(c.fs, cachePath); err == nil {
		return data, mimetype.Detect(data).String(), nil
	}

	data, err := c.download(ctx, size, name)
	if err != nil {
		return nil, "", err
	}

	if err := c.fs.MkdirAll(path.Dir(cachePath), 0755); err != nil {
		return nil, "", fmt.Errorf("create cache dir: %w", err)
	}
	if err := afero.WriteFile(c.fs, cachePath, data, 0644); err != nil {
		return nil, "", fmt.Errorf("write cache file: %w", err)
	}

	c.logger.Debug("images.cached", "size", size, "name", name, "bytes", len(data))
	return data, mimetype.Detect(data).String(), nil
}

// download fetches the image with a few quick retries on transient errors.
// A 4xx from the origin is permanent and fails immediately.
func (c *Cache) download(ctx context.Context, size, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, size, name)

	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("origin status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("origin status %d", resp.StatusCode)
			}

			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return data, nil
}
