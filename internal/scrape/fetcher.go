package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 8 * time.Second
	defaultUserAgent = "somewherescout/1.0 (+https://github.com/baileyram/somewherescout)"

	// Per-host politeness limits. The source set is small, so the burst
	// covers a whole batch against a single host.
	requestsPerSecond = 4
	requestBurst      = 8
)

// FetchResult captures the outcome of fetching one source URL. Exactly one of
// Body, HTTPStatus or Err carries the outcome: a 2xx body, a non-2xx status
// code, or a transport failure.
type FetchResult struct {
	URL        string
	Body       string
	HTTPStatus int
	Err        error
}

// OK reports whether the fetch produced a usable body.
func (r *FetchResult) OK() bool {
	return r.Err == nil && r.HTTPStatus == 0
}

// Reason describes a failed result for logging.
func (r *FetchResult) Reason() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("transport: %v", r.Err)
	case r.HTTPStatus != 0:
		return fmt.Sprintf("http status %d", r.HTTPStatus)
	default:
		return ""
	}
}

// Fetcher retrieves raw HTML for single URLs. It never returns an error past
// its boundary: all transport and HTTP failures are typed values in the
// FetchResult, so one bad source cannot abort a batch.
type Fetcher struct {
	client    *http.Client
	logger    *zap.Logger
	UserAgent string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		// Redirects are followed by the default client policy.
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		UserAgent: defaultUserAgent,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, source string) *FetchResult {
	result := &FetchResult{URL: source}

	if err := f.wait(ctx, source); err != nil {
		result.Err = fmt.Errorf("rate limiter: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		result.Err = fmt.Errorf("build request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.UserAgent)

	f.logger.Debug("fetching source", zap.String("url", source))

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.HTTPStatus = resp.StatusCode
		return result
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("read body: %w", err)
		return result
	}

	result.Body = string(body)
	return result
}

func (f *Fetcher) wait(ctx context.Context, source string) error {
	host := "_"
	if u, err := url.Parse(source); err == nil && u.Host != "" {
		host = u.Host
	}
	return f.limiterFor(host).Wait(ctx)
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst)
	f.limiters[host] = lim
	return lim
}
