package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		UseOfProceedsWeight: 0.4,
		ReportingWeight:     0.3,
		VerificationWeight:  0.3,
		RiskLowThreshold:    75,
	}
}

func testImpactConfig() config.ImpactConfig {
	return config.ImpactConfig{
		IntensityTonsPerMUSD: 5.0,
		RealizationFraction:  0.65,
		AmountUncertaintyPct: 0.10,
		ClaimUncertaintyPct:  0.15,
		UncertaintyFloorTons: 1.0,
	}
}

// fakeML is a deterministic MLScorer stub that records calls.
type fakeML struct {
	score float64
	ok    bool
	calls int
}

func (f *fakeML) Score(string) (float64, bool) {
	f.calls++
	return f.score, f.ok
}

func TestEngineRuleModeSkipsML(t *testing.T) {
	ml := &fakeML{score: 99, ok: true}
	e := New(testEngineConfig(), testImpactConfig(), ml)

	res := e.Score(Request{Text: "proceeds will be used for solar", Mode: model.ModeRule})

	assert.Zero(t, ml.calls)
	assert.Nil(t, res.MLScore)
	assert.Equal(t, model.ModeRule, res.Mode)
	assert.Equal(t, res.RuleBasedScore, res.TransparencyScore)
}

func TestEngineLearned(t *testing.T) {
	ml := &fakeML{score: 88.5, ok: true}
	e := New(testEngineConfig(), testImpactConfig(), ml)

	res := e.Score(Request{Text: "proceeds will be used for solar", Mode: model.ModeLearned})

	require.NotNil(t, res.MLScore)
	assert.Equal(t, 88.5, *res.MLScore)
	assert.Equal(t, 88.5, res.TransparencyScore)
	assert.Equal(t, model.ModeLearned, res.Mode)
	assert.Equal(t, model.RiskLow, res.GreenwashingRisk)
	// The rule score is still computed and reported alongside.
	assert.NotEqual(t, res.TransparencyScore, res.RuleBasedScore)
}

func TestEngineDegradesToRule(t *testing.T) {
	for _, requested := range []model.Mode{model.ModeLearned, model.ModeBlend} {
		t.Run(string(requested), func(t *testing.T) {
			e := New(testEngineConfig(), testImpactConfig(), &fakeML{ok: false})

			res := e.Score(Request{Text: "annual reporting", Mode: requested})

			assert.Equal(t, model.ModeRule, res.Mode)
			assert.Nil(t, res.MLScore)
			assert.Equal(t, res.RuleBasedScore, res.TransparencyScore)
			assert.Contains(t, res.Explanations, "Learned model unavailable; rule-based score used.")
		})
	}
}

func TestEngineNilMLDegrades(t *testing.T) {
	e := New(testEngineConfig(), testImpactConfig(), nil)

	res := e.Score(Request{Text: "", Mode: model.ModeLearned})

	assert.Equal(t, model.ModeRule, res.Mode)
	assert.Equal(t, res.RuleBasedScore, res.TransparencyScore)
}

func TestEngineBlend(t *testing.T) {
	ml := &fakeML{score: 50, ok: true}
	e := New(testEngineConfig(), testImpactConfig(), ml)

	res := e.Score(Request{Text: "", Mode: model.ModeBlend})

	// Empty text rule score is 14.0 with the default weights.
	assert.Equal(t, 14.0, res.RuleBasedScore)
	assert.Equal(t, 32.0, res.TransparencyScore)
	assert.Equal(t, model.ModeBlend, res.Mode)
}

func TestEngineEmptyText(t *testing.T) {
	e := New(testEngineConfig(), testImpactConfig(), nil)

	res := e.Score(Request{Text: "", Mode: model.ModeRule})

	assert.Equal(t, 14.0, res.TransparencyScore)
	assert.Equal(t, model.TransparencyComponents{
		UseOfProceedsClarity: 20,
		ReportingPractices:   10,
		VerificationStrength: 10,
	}, res.Components)
	assert.Equal(t, model.RiskMedium, res.GreenwashingRisk)
	assert.Nil(t, res.Impact.Claimed)
	assert.Nil(t, res.Impact.Predicted)
	assert.Nil(t, res.Impact.Gap)
	assert.NotEmpty(t, res.Explanations)
}

func TestEngineIdempotent(t *testing.T) {
	e := New(testEngineConfig(), testImpactConfig(), &fakeML{score: 61.2, ok: true})
	req := Request{
		Text:              "Use of proceeds: solar. Annual report with KPIs. Assurance by CICERO. 1200 tCO2.",
		ClaimedImpactTons: floatPtr(1000),
		Mode:              model.ModeBlend,
	}

	first := e.Score(req)
	second := e.Score(req)
	require.Equal(t, first, second)
}

func TestEngineImpactPassthrough(t *testing.T) {
	e := New(testEngineConfig(), testImpactConfig(), nil)

	res := e.Score(Request{
		Text:            "wind farm",
		AmountIssuedUSD: floatPtr(2_000_000),
		Mode:            model.ModeRule,
	})

	require.NotNil(t, res.Impact.Predicted)
	assert.Equal(t, 10.0, *res.Impact.Predicted)
	require.NotNil(t, res.Impact.Uncertainty)
	assert.Equal(t, 1.0, *res.Impact.Uncertainty)
	assert.Nil(t, res.Impact.Gap)
}

func TestEngineInputNormalization(t *testing.T) {
	e := New(testEngineConfig(), testImpactConfig(), nil)

	messy := e.Score(Request{Text: "  use of\n\nproceeds  ", Mode: model.ModeRule})
	clean := e.Score(Request{Text: "use of proceeds", Mode: model.ModeRule})

	assert.Equal(t, clean.TransparencyScore, messy.TransparencyScore)
	assert.Equal(t, clean.Components, messy.Components)
}
