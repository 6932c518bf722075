// Package fetch provides a reference IncludeFetcher implementation for the
// parser package's .include/.includes macros: a local-file and http(s)
// fetcher with per-instance rate limiting.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jacoelho/ucl/internal/ratelimit"
)

// Fetcher resolves .include targets to bytes: a bare path reads a local
// file (resolved relative to baseDir); an http:// or https:// target is
// fetched over HTTP, throttled by a ratelimit.Limiter so a config with
// many includes cannot hammer a remote host.
type Fetcher struct {
	baseDir string
	client  *http.Client
	limiter *ratelimit.Limiter
	timeout time.Duration
}

// New creates a Fetcher rooted at baseDir for relative includes, allowing
// at most requestsPerSecond outbound HTTP fetches (0 or negative disables
// rate limiting).
func New(baseDir string, requestsPerSecond float64) *Fetcher {
	return &Fetcher{
		baseDir: baseDir,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: ratelimit.New(requestsPerSecond),
		timeout: 10 * time.Second,
	}
}

// Fetch resolves target and returns its bytes. It matches the
// parser.IncludeFetcher signature.
func (f *Fetcher) Fetch(target string) ([]byte, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return f.fetchHTTP(target)
	}
	return f.fetchFile(target)
}

func (f *Fetcher) fetchFile(target string) ([]byte, error) {
	path := target
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading %q: %w", path, err)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch: rate limit wait for %q: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request for %q: %w", target, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: requesting %q: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %q returned status %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading body of %q: %w", target, err)
	}
	return data, nil
}

// SetRateLimit changes the outbound HTTP request rate at runtime.
// requestsPerSecond <= 0 disables rate limiting.
func (f *Fetcher) SetRateLimit(requestsPerSecond float64) {
	f.limiter.SetLimit(requestsPerSecond)
}
