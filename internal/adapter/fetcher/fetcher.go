package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/infra/httpclient"
)

const defaultBackoff = 1 * time.Second

// Fetcher downloads document bytes over HTTP with a bounded retry budget.
// Transport failures, timeouts, and 5xx responses are retried with exponential
// backoff; 4xx responses surface immediately. An empty body is valid content.
type Fetcher struct {
	client   *http.Client
	retries  int
	maxBytes int
	backoff  time.Duration
	sleep    func(time.Duration)
	logger   *slog.Logger
}

func New(timeout time.Duration, retries, maxBytes int, logger *slog.Logger) *Fetcher {
	if retries < 1 {
		retries = 1
	}
	return &Fetcher{
		client:   httpclient.NewPooledClient(timeout),
		retries:  retries,
		maxBytes: maxBytes,
		backoff:  defaultBackoff,
		sleep:    time.Sleep,
		logger:   logger,
	}
}

// Fetch downloads the URL, returning a *domain.DownloadError once the retry
// budget is exhausted or a non-retryable failure is seen.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := f.backoff

	for attempt := 1; attempt <= f.retries; attempt++ {
		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable {
			return nil, &domain.DownloadError{URL: url, Attempts: attempt, Err: err}
		}

		if attempt < f.retries {
			f.logger.Warn("download failed, retrying",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			f.sleep(backoff)
			backoff *= 2
		}
	}

	return nil, &domain.DownloadError{URL: url, Attempts: f.retries, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Connection resets and client timeouts are transient.
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, int64(f.maxBytes)+1)
	}
	body, err = io.ReadAll(reader)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read body: %w", err)
	}
	if f.maxBytes > 0 && len(body) > f.maxBytes {
		return nil, false, fmt.Errorf("response exceeds %d bytes", f.maxBytes)
	}
	return body, false, nil
}
