package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsm-13/green-prism/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBlend(t *testing.T) {
	tests := []struct {
		name      string
		requested model.Mode
		rule      float64
		ml        *float64
		wantScore float64
		wantMode  model.Mode
	}{
		{"rule ignores ml", model.ModeRule, 40, floatPtr(90), 40, model.ModeRule},
		{"learned uses ml", model.ModeLearned, 40, floatPtr(90), 90, model.ModeLearned},
		{"learned without ml falls back", model.ModeLearned, 40, nil, 40, model.ModeRule},
		{"blend averages", model.ModeBlend, 40, floatPtr(90), 65, model.ModeBlend},
		{"blend without ml falls back", model.ModeBlend, 40, nil, 40, model.ModeRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, mode := Blend(tt.requested, tt.rule, tt.ml)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

func TestBlendExactMean(t *testing.T) {
	// The blended score is the unrounded arithmetic mean, bit for bit.
	rule, ml := 70.7, 80.3
	score, mode := Blend(model.ModeBlend, rule, floatPtr(ml))

	assert.Equal(t, (rule+ml)/2, score)
	assert.Equal(t, model.ModeBlend, mode)
}

func TestRiskLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  model.RiskLevel
	}{
		{0, model.RiskMedium},
		{74.9, model.RiskMedium},
		{75, model.RiskMedium}, // threshold itself is not low
		{75.1, model.RiskLow},
		{100, model.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLabel(tt.score, 75), "score %v", tt.score)
	}
}
