package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 8 * time.Second

	// maxResponseBytes bounds how much of a search API response we read.
	maxResponseBytes = 4 << 20
)

// fetcher is a retrying HTTP GET helper shared by the search adapters.
// Retries cover transport errors, 429 and 5xx responses, with exponential
// backoff plus jitter. A Retry-After header on a 429 overrides the
// computed delay.
type fetcher struct {
	http        *http.Client
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func newFetcher(client *http.Client) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &fetcher{
		http:        client,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
}

// get fetches url and returns the response body. Non-retryable HTTP
// failures surface immediately; retryable ones are attempted up to
// maxAttempts times.
func (f *fetcher) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, f.delayFor(attempt, lastErr)); err != nil {
				return nil, err
			}
		}

		body, err := f.getOnce(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var httpErr *httpStatusError
		if errors.As(err, &httpErr) && !httpErr.retryable() {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", f.maxAttempts, lastErr)
}

func (f *fetcher) getOnce(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{
			status:     resp.StatusCode,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return body, nil
}

// delayFor computes the backoff before the given attempt (1-based for
// retries). A server-provided Retry-After wins over the computed delay.
func (f *fetcher) delayFor(attempt int, lastErr error) time.Duration {
	var httpErr *httpStatusError
	if errors.As(lastErr, &httpErr) && httpErr.retryAfter > 0 {
		return httpErr.retryAfter
	}

	delay := f.baseDelay << (attempt - 1)
	if delay > f.maxDelay {
		delay = f.maxDelay
	}
	// Full jitter keeps concurrent retries from synchronizing.
	return time.Duration(rand.Int63n(int64(delay)) + int64(delay)/2)
}

func (f *fetcher) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type httpStatusError struct {
	status     int
	retryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("search request failed with HTTP %d", e.status)
}

func (e *httpStatusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
