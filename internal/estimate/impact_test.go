package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsm-13/green-prism/internal/config"
)

func floatPtr(v float64) *float64 { return &v }

func testConfig() config.ImpactConfig {
	return config.ImpactConfig{
		IntensityTonsPerMUSD: 5.0,
		RealizationFraction:  0.65,
		AmountUncertaintyPct: 0.10,
		ClaimUncertaintyPct:  0.15,
		UncertaintyFloorTons: 1.0,
	}
}

func TestImpactAmountTier(t *testing.T) {
	p := Impact(nil, floatPtr(2_000_000), "renewable_energy", testConfig())

	require.NotNil(t, p.Predicted)
	assert.Equal(t, 10.0, *p.Predicted)
	require.NotNil(t, p.Uncertainty)
	// 10% of 10 tons is below the floor.
	assert.Equal(t, 1.0, *p.Uncertainty)
	assert.Nil(t, p.Claimed)
	assert.Nil(t, p.Gap)
}

func TestImpactAmountTierWithClaim(t *testing.T) {
	p := Impact(floatPtr(100), floatPtr(2_000_000), "", testConfig())

	require.NotNil(t, p.Gap)
	assert.Equal(t, 90.0, *p.Gap) // 100 claimed - 10 predicted
	require.NotNil(t, p.Claimed)
	assert.Equal(t, 100.0, *p.Claimed)
}

func TestImpactAmountUncertaintyScales(t *testing.T) {
	// $100M at 5 t/$1M predicts 500 tons; 10% of that clears the floor.
	p := Impact(nil, floatPtr(100_000_000), "", testConfig())

	require.NotNil(t, p.Predicted)
	assert.Equal(t, 500.0, *p.Predicted)
	require.NotNil(t, p.Uncertainty)
	assert.Equal(t, 50.0, *p.Uncertainty)
}

func TestImpactClaimTier(t *testing.T) {
	p := Impact(floatPtr(1000), nil, "", testConfig())

	require.NotNil(t, p.Predicted)
	assert.Equal(t, 650.0, *p.Predicted)
	require.NotNil(t, p.Uncertainty)
	assert.Equal(t, 150.0, *p.Uncertainty)
	require.NotNil(t, p.Gap)
	assert.Equal(t, 350.0, *p.Gap)
}

func TestImpactNothingToEstimate(t *testing.T) {
	tests := []struct {
		name    string
		claimed *float64
		amount  *float64
	}{
		{"both nil", nil, nil},
		{"zero amount only", nil, floatPtr(0)},
		{"negative amount only", nil, floatPtr(-5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Impact(tt.claimed, tt.amount, "", testConfig())
			assert.Nil(t, p.Claimed)
			assert.Nil(t, p.Predicted)
			assert.Nil(t, p.Uncertainty)
			assert.Nil(t, p.Gap)
		})
	}
}

func TestImpactNonPositiveAmountFallsToClaim(t *testing.T) {
	p := Impact(floatPtr(200), floatPtr(0), "", testConfig())

	require.NotNil(t, p.Predicted)
	assert.Equal(t, 130.0, *p.Predicted) // 0.65 * 200
	require.NotNil(t, p.Gap)
	assert.Equal(t, 70.0, *p.Gap)
}
