// Package stooq provides a client for the Stooq daily price CSV endpoint,
// used as the live fallback for green bond ETF price history.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Point is one daily close observation.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Client fetches daily price history.
type Client interface {
	// DailyHistory returns daily closes for a symbol over the trailing
	// days window, oldest first.
	DailyHistory(ctx context.Context, symbol string, days int) ([]Point, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a Stooq client. Stooq throttles aggressive callers, so
// requests default to one per second.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://stooq.com",
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) DailyHistory(ctx context.Context, symbol string, days int) ([]Point, error) {
	if symbol == "" {
		return nil, eris.New("stooq: symbol is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "stooq: rate limit wait")
	}

	// Stooq lists US ETFs under "<symbol>.us".
	q := url.Values{}
	q.Set("s", strings.ToLower(symbol)+".us")
	q.Set("i", "d")
	endpoint := fmt.Sprintf("%s/q/d/l/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "stooq: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "stooq: fetch %s", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("stooq: fetch %s: status %d", symbol, resp.StatusCode)
	}

	return c.parseHistory(resp.Body, days)
}

// parseHistory reads the Stooq daily CSV (Date,Open,High,Low,Close,Volume)
// and keeps closes within the trailing days window. Rows with missing or
// malformed dates or closes are skipped.
func (c *httpClient) parseHistory(r io.Reader, days int) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	cutoff := c.now().AddDate(0, 0, -days).Unix()

	var points []Point
	header := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "stooq: parse CSV")
		}
		if header {
			header = false
			continue
		}
		if len(record) < 5 {
			continue
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			continue
		}
		closePrice := strings.TrimSpace(record[4])
		if closePrice == "" || strings.EqualFold(closePrice, "null") {
			continue
		}
		value, err := strconv.ParseFloat(closePrice, 64)
		if err != nil {
			continue
		}

		ts := date.Unix()
		if days > 0 && ts < cutoff {
			continue
		}
		points = append(points, Point{Time: ts, Value: value})
	}
	return points, nil
}
