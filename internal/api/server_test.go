package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/market"
	"github.com/rsm-13/green-prism/internal/model"
	"github.com/rsm-13/green-prism/internal/scorer"
	"github.com/rsm-13/green-prism/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	bonds map[string]model.Bond
}

func (m *memStore) ListBonds(_ context.Context, limit int) ([]model.Bond, error) {
	var out []model.Bond
	for _, b := range m.bonds {
		if len(out) >= limit {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) GetBond(_ context.Context, bondID string) (*model.Bond, error) {
	b, ok := m.bonds[bondID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) UpsertBonds(_ context.Context, bonds []model.Bond) (int, error) {
	for _, b := range bonds {
		m.bonds[b.BondID] = b
	}
	return len(bonds), nil
}

func (m *memStore) SaveScore(context.Context, string, *model.ScoreResult) error {
	return nil
}

func (m *memStore) LatestScore(context.Context, string) (*model.ScoreResult, error) {
	return nil, store.ErrNotFound
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func floatPtr(v float64) *float64 { return &v }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := &memStore{bonds: map[string]model.Bond{
		"gb-001": {
			BondID:            "gb-001",
			IssuerName:        "Acme Energy",
			UseOfProceeds:     "Proceeds will be used for solar farms with annual reporting.",
			AmountIssuedUSD:   floatPtr(2_000_000),
			ClaimedImpactTons: floatPtr(1000),
		},
	}}

	engine := scorer.New(
		config.EngineConfig{UseOfProceedsWeight: 0.4, ReportingWeight: 0.3, VerificationWeight: 0.3, RiskLowThreshold: 75},
		config.ImpactConfig{IntensityTonsPerMUSD: 5, RealizationFraction: 0.65, AmountUncertaintyPct: 0.1, ClaimUncertaintyPct: 0.15, UncertaintyFloorTons: 1},
		nil,
	)

	seriesPath := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(seriesPath, []byte(
		"symbol,date,price,yield_to_maturity,yield_to_worst,nav\n"+
			"GRNB,2024-01-02,25.10,4.2,4.0,25.05\n"+
			"GRNB,2024-01-03,25.30,4.1,3.9,25.20\n",
	), 0o644))

	srv := NewServer(st, engine, market.NewProvider(seriesPath), nil, config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)

	req := `{"text":"Use of proceeds: solar. Annual report. Assurance by CICERO.","claimed_impact_co2_tons":1000,"mode":"rule"}`
	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(req))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.ScoreResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, model.ModeRule, result.Mode)
	assert.Greater(t, result.TransparencyScore, 0.0)
	assert.LessOrEqual(t, result.TransparencyScore, 100.0)
	require.NotNil(t, result.Impact.Claimed)
	assert.Equal(t, 1000.0, *result.Impact.Claimed)
	assert.NotEmpty(t, result.Explanations)
}

func TestAnalyzeBadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"text":`},
		{"unknown mode", `{"text":"hello","mode":"quantum"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAnalyzeEmptyBody(t *testing.T) {
	// An empty-but-valid request still scores: the engine is total.
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.ScoreResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 14.0, result.TransparencyScore)
	assert.Equal(t, model.RiskMedium, result.GreenwashingRisk)
}

func TestListBonds(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Bonds []model.Bond `json:"bonds"`
		Count int          `json:"count"`
	}
	status := getJSON(t, ts.URL+"/api/bonds", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Bonds, 1)
	assert.Equal(t, "gb-001", body.Bonds[0].BondID)
}

func TestGetBond(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Bond  *model.Bond        `json:"bond"`
		Score *model.ScoreResult `json:"score"`
	}
	status := getJSON(t, ts.URL+"/api/bonds/gb-001", &body)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, body.Bond)
	assert.Equal(t, "Acme Energy", body.Bond.IssuerName)
	require.NotNil(t, body.Score)
	assert.Equal(t, model.ModeRule, body.Score.Mode)
	require.NotNil(t, body.Score.Impact.Gap)
}

func TestGetBondNotFound(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/bonds/gb-missing", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "bond not found", body["error"])
}

func TestGetBondBadMode(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/bonds/gb-001?mode=quantum", &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMarketSeries(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Symbol  string          `json:"symbol"`
		Points  []market.Point  `json:"points"`
		Summary *market.Summary `json:"summary"`
	}
	status := getJSON(t, ts.URL+"/api/market/GRNB?days=3650", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "GRNB", body.Symbol)
	assert.Len(t, body.Points, 2)
	require.NotNil(t, body.Summary)
	require.NotNil(t, body.Summary.LatestPrice)
	assert.Equal(t, 25.30, *body.Summary.LatestPrice)
}

func TestMarketSeriesUnknownSymbol(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/market/NOPE", &body)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMarketLiveUnconfigured(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/market/GRNB?live=true", &body)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/bonds", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
