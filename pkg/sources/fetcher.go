package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/redshield/locsync/pkg/errors"
)

// Fetcher retrieves one source document by path. Loaders are
// transport-agnostic; the same loader set runs against a directory of
// exported files or against the hosting site over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FileFetcher reads sources from a local directory.
type FileFetcher struct {
	Root string
}

// Fetch implements Fetcher.
func (f *FileFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.Root, filepath.FromSlash(path)))
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// HTTPFetcher retrieves sources relative to a base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with a bounded default timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	endpoint, err := url.JoinPath(f.BaseURL, path)
	if err != nil {
		return nil, errors.WrapIO("fetch", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapIO("fetch", endpoint, err)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WrapIO("fetch", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WrapIO("fetch", endpoint, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}
