package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const maxFetchAttempts = 3

// HTTPFetcherConfig tunes the HTTP fetcher. Zero values fall back to the
// defaults used by NewHTTPImageFetcher.
type HTTPFetcherConfig struct {
	Timeout    time.Duration
	MaxBytes   int64
	RetryDelay time.Duration // base backoff, multiplied by the attempt number
}

// HTTPImageFetcher implements ImageFetcher for http and https URLs
type HTTPImageFetcher struct {
	client     *http.Client
	maxBytes   int64
	retryDelay time.Duration
}

// NewHTTPImageFetcher creates an HTTP image fetcher with default settings
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return NewHTTPImageFetcherWithConfig(HTTPFetcherConfig{})
}

// NewHTTPImageFetcherWithConfig creates an HTTP image fetcher
func NewHTTPImageFetcherWithConfig(cfg HTTPFetcherConfig) *HTTPImageFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes:   cfg.MaxBytes,
		retryDelay: cfg.RetryDelay,
	}
}

// FetchImage downloads imageURL, retrying transport errors and 5xx responses.
// 4xx responses fail immediately.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Heatmap-Inspector/1.0")

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(time.Duration(attempt) * h.retryDelay):
			}
		}

		data, retry, err := h.attempt(req)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}

// attempt performs one request and reports whether a failure is retryable
func (h *HTTPImageFetcher) attempt(req *http.Request) ([]byte, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}
