package stooq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDailyHistory(t *testing.T) {
	day := func(offset int) string {
		return time.Now().AddDate(0, 0, -offset).Format("2006-01-02")
	}
	csvBody := "Date,Open,High,Low,Close,Volume\n" +
		day(400) + ",24.0,24.5,23.8,24.2,1000\n" +
		day(10) + ",25.0,25.5,24.8,25.2,1000\n" +
		day(9) + ",25.2,25.6,25.0,null,1000\n" +
		day(8) + ",garbage-date-skipped\n" +
		day(7) + ",25.3,25.9,25.1,25.7,1200\n"

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		fmt.Fprint(w, csvBody)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1))

	points, err := c.DailyHistory(context.Background(), "GRNB", 365)
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/q/d/l/")
	assert.Contains(t, gotPath, "s=grnb.us")
	assert.Contains(t, gotPath, "i=d")

	// The 400-day-old row is outside the window; the null close and the
	// malformed row are dropped.
	require.Len(t, points, 2)
	assert.Equal(t, 25.2, points[0].Value)
	assert.Equal(t, 25.7, points[1].Value)
	assert.Less(t, points[0].Time, points[1].Time)
}

func TestDailyHistoryEmptySymbol(t *testing.T) {
	c := NewClient()
	_, err := c.DailyHistory(context.Background(), "", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol is required")
}

func TestDailyHistoryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1))
	_, err := c.DailyHistory(context.Background(), "grnb", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestDailyHistoryContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1))
	_, err := c.DailyHistory(ctx, "grnb", 30)
	require.Error(t, err)
}

func TestDailyHistoryHeaderOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Date,Open,High,Low,Close,Volume\n")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1))
	points, err := c.DailyHistory(context.Background(), "grnb", 30)
	require.NoError(t, err)
	assert.Empty(t, points)
}
