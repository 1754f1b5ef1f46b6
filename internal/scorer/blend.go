package scorer

import (
	"github.com/rsm-13/green-prism/internal/model"
)

// Blend chooses the headline transparency score from the rule score and an
// optional learned score according to the requested mode. The fallback chain
// is total: a caller asking for learned or blended scoring when no learned
// score exists gets the rule score back, with the returned mode reporting
// which source actually produced the value.
func Blend(requested model.Mode, ruleScore float64, mlScore *float64) (float64, model.Mode) {
	switch {
	case requested == model.ModeLearned && mlScore != nil:
		return *mlScore, model.ModeLearned
	case requested == model.ModeBlend && mlScore != nil:
		return (ruleScore + *mlScore) / 2, model.ModeBlend
	default:
		return ruleScore, model.ModeRule
	}
}

// RiskLabel derives the coarse greenwashing-risk label from a transparency
// score. Only "low" and "medium" tiers exist; a "high" tier and the cutoff
// itself are unresolved calibration questions.
func RiskLabel(score, lowThreshold float64) model.RiskLevel {
	if score > lowThreshold {
		return model.RiskLow
	}
	return model.RiskMedium
}
