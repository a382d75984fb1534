package datafeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/fazecat/squeezescope/Internal/types"
	"github.com/fazecat/squeezescope/Internal/utils"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/scanner"
)

var (
	// ErrNotFound is returned when upstream has no record for a symbol.
	ErrNotFound    = errors.New("ticker not found")
	ErrEmptySymbol = errors.New("empty ticker symbol")
)

// StatusError is a non-2xx upstream response other than 404.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Code)
}

// Source supplies screener rows and per-symbol metrics.
type Source interface {
	FetchTickers(ctx context.Context) ([]types.Row, error)
	FetchTickerMetrics(ctx context.Context, symbol string) (*types.Metrics, error)
}

// Client reads the upstream ticker API. Concurrent requests for the same
// resource share one round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      utils.RetryConfig
	flights    singleflight.Group
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryConfig(rc utils.RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	retry := utils.DefaultRetryConfig()
	if cfg.Retries >= 0 {
		retry.MaxRetries = cfg.Retries
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		retry:      retry,
		logger:     logger.Named("datafeed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTickers returns the full row snapshot. Both list shapes upstream may
// send are accepted.
func (c *Client) FetchTickers(ctx context.Context) ([]types.Row, error) {
	v, err := c.share(ctx, "tickers", func(ctx context.Context) (any, error) {
		var payload types.RowsPayload
		if err := c.getJSON(ctx, "/tickers", &payload); err != nil {
			return nil, fmt.Errorf("fetch tickers: %w", err)
		}
		return scanner.Normalize(payload), nil
	})
	if err != nil {
		return nil, err
	}

	// callers may enrich rows in place, so each gets its own copy
	shared := v.([]types.Row)
	rows := make([]types.Row, len(shared))
	copy(rows, shared)
	return rows, nil
}

// FetchTickerMetrics returns the metrics record for symbol. The symbol is
// trimmed and uppercased first.
func (c *Client) FetchTickerMetrics(ctx context.Context, symbol string) (*types.Metrics, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	v, err := c.share(ctx, "metrics:"+symbol, func(ctx context.Context) (any, error) {
		var m types.Metrics
		if err := c.getJSON(ctx, "/tickers/"+url.PathEscape(symbol), &m); err != nil {
			return nil, fmt.Errorf("fetch metrics for %s: %w", symbol, err)
		}
		return &m, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMetrics(v.(*types.Metrics)), nil
}

func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func cloneMetrics(m *types.Metrics) *types.Metrics {
	out := *m
	out.Series = append([]types.SeriesPoint(nil), m.Series...)
	if m.SqueezeScore != nil {
		score := *m.SqueezeScore
		out.SqueezeScore = &score
	}
	return &out
}

// share runs fn once per key among concurrent callers. The shared call is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx ends.
func (c *Client) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.flights.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("shared upstream request", zap.String("key", key))
		}
		return res.Val, res.Err
	}
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	endpoint := c.baseURL + path
	attempt := 0

	return utils.RetryWithContext(ctx, func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return utils.Permanent(err)
		}

		err := c.doGet(ctx, endpoint, dst)
		if err != nil && !errors.Is(err, ErrNotFound) {
			c.logger.Warn("upstream request failed",
				zap.String("url", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}, c.retry)
}

// doGet performs one request. Errors that a retry cannot fix are wrapped
// with utils.Permanent.
func (c *Client) doGet(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return utils.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return utils.Permanent(ErrNotFound)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: endpoint}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return utils.Permanent(&StatusError{Code: resp.StatusCode, URL: endpoint})
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return utils.Permanent(fmt.Errorf("decode %s: %w", endpoint, err))
	}
	return nil
}
