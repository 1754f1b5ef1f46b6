// Package market serves green bond index and ETF price series from the
// unified market_series.csv dataset.
package market

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Point is one observation in lightweight-charts format.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Summary describes the latest state of one symbol's series.
type Summary struct {
	Symbol           string   `json:"symbol"`
	Days             int      `json:"days"`
	Points           int      `json:"points"`
	LatestPrice      *float64 `json:"latest_price"`
	LatestYieldToMat *float64 `json:"latest_yield_to_maturity"`
	LatestNAV        *float64 `json:"latest_nav"`
}

// seriesRow is one CSV record. Price falls back to NAV when absent.
type seriesRow struct {
	Symbol string
	Date   time.Time
	Price  *float64
	YTM    *float64
	YTW    *float64
	NAV    *float64
}

// csvRow mirrors the market_series.csv schema as text; numerics are coerced
// after decoding so malformed cells drop silently instead of failing the load.
type csvRow struct {
	Symbol string `csv:"symbol"`
	Date   string `csv:"date"`
	Price  string `csv:"price"`
	YTM    string `csv:"yield_to_maturity"`
	YTW    string `csv:"yield_to_worst"`
	NAV    string `csv:"nav"`
}

// Provider loads the series CSV once per process and serves cached,
// read-only views of it. Safe for concurrent use.
type Provider struct {
	path string

	once sync.Once
	rows []seriesRow
	err  error
}

// NewProvider creates a Provider for the CSV at path. Nothing is read until
// the first query.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

func (p *Provider) load() {
	f, err := os.Open(p.path)
	if err != nil {
		p.err = eris.Wrapf(err, "market: open series %s", p.path)
		return
	}
	defer f.Close()

	rows, err := parseSeries(f)
	if err != nil {
		p.err = err
		return
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	p.rows = rows

	zap.L().Info("market: series loaded",
		zap.String("path", p.path),
		zap.Int("rows", len(rows)),
	)
}

func parseSeries(r io.Reader) ([]seriesRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "market: read series header")
	}

	var rows []seriesRow
	for {
		var raw csvRow
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "market: decode series row")
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(raw.Date))
		if err != nil {
			continue
		}
		rows = append(rows, seriesRow{
			Symbol: strings.ToUpper(strings.TrimSpace(raw.Symbol)),
			Date:   date,
			Price:  parseFloat(raw.Price),
			YTM:    parseFloat(raw.YTM),
			YTW:    parseFloat(raw.YTW),
			NAV:    parseFloat(raw.NAV),
		})
	}
	return rows, nil
}

// Series returns the price series for a symbol, optionally limited to the
// trailing days window (relative to the symbol's newest observation).
func (p *Provider) Series(symbol string, days int) ([]Point, error) {
	rows, err := p.symbolRows(symbol, days)
	if err != nil {
		return nil, err
	}

	var points []Point
	for _, r := range rows {
		v := r.Price
		if v == nil {
			v = r.NAV
		}
		if v == nil {
			continue
		}
		points = append(points, Point{Time: r.Date.Unix(), Value: *v})
	}
	return points, nil
}

// Summarize returns the latest price/yield snapshot for a symbol.
func (p *Provider) Summarize(symbol string, days int) (*Summary, error) {
	rows, err := p.symbolRows(symbol, days)
	if err != nil {
		return nil, err
	}

	s := &Summary{Symbol: strings.ToUpper(symbol), Days: days, Points: len(rows)}
	// Latest non-null value wins, scanning newest first.
	for i := len(rows) - 1; i >= 0; i-- {
		if s.LatestPrice == nil && rows[i].Price != nil {
			s.LatestPrice = rows[i].Price
		}
		if s.LatestPrice == nil && rows[i].NAV != nil {
			s.LatestPrice = rows[i].NAV
		}
		if s.LatestYieldToMat == nil && rows[i].YTM != nil {
			s.LatestYieldToMat = rows[i].YTM
		}
		if s.LatestNAV == nil && rows[i].NAV != nil {
			s.LatestNAV = rows[i].NAV
		}
		if s.LatestPrice != nil && s.LatestYieldToMat != nil && s.LatestNAV != nil {
			break
		}
	}
	return s, nil
}

func (p *Provider) symbolRows(symbol string, days int) ([]seriesRow, error) {
	p.once.Do(p.load)
	if p.err != nil {
		return nil, p.err
	}

	want := strings.ToUpper(strings.TrimSpace(symbol))
	var rows []seriesRow
	for _, r := range p.rows {
		if r.Symbol == want {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("market: no series for symbol %s", want)
	}

	if days > 0 {
		cutoff := rows[len(rows)-1].Date.AddDate(0, 0, -days)
		var trimmed []seriesRow
		for _, r := range rows {
			if !r.Date.Before(cutoff) {
				trimmed = append(trimmed, r)
			}
		}
		rows = trimmed
	}
	return rows, nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
