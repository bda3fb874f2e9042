package fetcher

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/countries-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher. Zero values take defaults.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Hosts paces requests per host. Hosts not listed share a generic
	// limiter.
	Hosts map[string]*HostLimiter
	// Retry overrides the backoff policy; Attempts comes from MaxRetries.
	Retry resilience.Policy
}

// HostLimiter paces requests to one source host. It slows down to half its
// current rate when the host answers 429 (never below a quarter of the
// configured rate) and speeds up by a fifth after each success (never above
// twice the configured rate).
type HostLimiter struct {
	mu   sync.Mutex
	lim  *rate.Limiter
	base rate.Limit
}

// NewHostLimiter allows perSecond requests with the given burst.
func NewHostLimiter(perSecond rate.Limit, burst int) *HostLimiter {
	return &HostLimiter{lim: rate.NewLimiter(perSecond, burst), base: perSecond}
}

// Wait blocks until the next request may start.
func (h *HostLimiter) Wait(ctx context.Context) error {
	return h.lim.Wait(ctx)
}

func (h *HostLimiter) adjust(factor float64) rate.Limit {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := min(max(h.lim.Limit()*rate.Limit(factor), h.base/4), h.base*2)
	h.lim.SetLimit(next)
	return next
}

// Throttled reacts to a 429.
func (h *HostLimiter) Throttled() {
	zap.L().Warn("fetcher: source throttled, slowing down",
		zap.Float64("rate", float64(h.adjust(0.5))),
	)
}

// Succeeded reacts to a successful response.
func (h *HostLimiter) Succeeded() { h.adjust(1.2) }

// Limit returns the current rate.
func (h *HostLimiter) Limit() rate.Limit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lim.Limit()
}

// SourceLimiters returns limiters for the production source hosts. The
// Wikimedia hosts tolerate more than the UNSD site, which serves one page.
func SourceLimiters() map[string]*HostLimiter {
	return map[string]*HostLimiter{
		"en.wikipedia.org": NewHostLimiter(10, 10),
		"www.wikidata.org": NewHostLimiter(10, 10),
		"sws.geonames.org": NewHostLimiter(5, 5),
		"unstats.un.org":   NewHostLimiter(2, 2),
	}
}

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	generic *HostLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "countries-cli/1.0"
	}
	if opts.Hosts == nil {
		opts.Hosts = SourceLimiters()
	}
	if opts.Retry.Backoff == 0 {
		opts.Retry = resilience.DefaultPolicy()
	}
	opts.Retry.Attempts = opts.MaxRetries

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		generic: NewHostLimiter(20, 20),
	}
}

func (f *HTTPFetcher) limiter(host string) *HostLimiter {
	if h, ok := f.opts.Hosts[host]; ok {
		return h
	}
	return f.generic
}

// Download fetches rawURL and returns the body of a 200 response. Throttled
// and overloaded responses are retried; any other status fails at once.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	lim := f.limiter(req.URL.Host)

	policy := f.opts.Retry
	policy.OnRetry = func(attempt int, err error) {
		zap.L().Warn("fetcher: retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	resp, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (*http.Response, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				lim.Throttled()
			}
			te := resilience.NewTransientError(eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
			te.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
			return nil, te
		}
		lim.Succeeded()
		return resp, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// retryAfter reads a Retry-After header given in seconds. HTTP-date values
// are ignored.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
