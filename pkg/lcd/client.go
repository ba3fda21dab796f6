package lcd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/cache"
	"github.com/arnac-io/txcomposer/pkg/core"
)

var queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "txcomposer_lcd_query_duration_seconds",
	Help:    "Duration of chain REST queries",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

// StatusError is a non-2xx response of the REST endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lcd returned %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	cacheSize  int
	cacheTTL   time.Duration
}

type Option func(o *Options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.httpClient = c
	}
}

// WithRetry sets how many times a failed query is attempted and the initial delay between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *Options) {
		o.attempts = attempts
		o.delay = delay
	}
}

// WithCache caches query results for ttl.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *Options) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// Client queries account state through the Cosmos SDK REST API.
type Client struct {
	logger  *zap.Logger
	baseURL string
	options Options
	cache   *cache.Cache[string, []byte]
}

var _ core.Querier = (*Client)(nil)

func NewClient(logger *zap.Logger, baseURL string, opts ...Option) *Client {
	options := Options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		delay:      100 * time.Millisecond,
		cacheSize:  1024,
		cacheTTL:   5 * time.Second,
	}
	for _, o := range opts {
		o(&options)
	}
	return &Client{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		options: options,
		cache:   cache.NewLRUCache[string, []byte](options.cacheSize, options.cacheTTL, "lcd"),
	}
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// get fetches path and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, method, path string, query url.Values, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	if body, ok := c.cache.Get(target); ok {
		return json.Unmarshal(body, dest)
	}
	defer prometheus.NewTimer(queryDuration.WithLabelValues(method)).ObserveDuration()

	var body []byte
	err := retry.Do(func() error {
		var err error
		body, err = c.fetch(ctx, target)
		return err
	},
		retry.Attempts(c.options.attempts),
		retry.Delay(c.options.delay),
		retry.Context(ctx),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying lcd query", zap.String("method", method), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return core.ErrEntityNotFound
		}
		return errors.Wrapf(err, "%s", method)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrapf(err, "decode %s", method)
	}
	c.cache.Set(target, body)
	return nil
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.options.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}
	return body, nil
}
