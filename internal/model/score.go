package model

import (
	"github.com/rotisserie/eris"
)

// Mode selects which scoring path produces the headline transparency score.
type Mode string

const (
	ModeRule    Mode = "rule"
	ModeLearned Mode = "learned"
	ModeBlend   Mode = "blend"
)

// ParseMode validates a caller-supplied mode string. An empty string defaults
// to ModeRule; anything else unknown is a caller error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeRule, nil
	case ModeRule, ModeLearned, ModeBlend:
		return Mode(s), nil
	default:
		return "", eris.Errorf("model: unknown scoring mode %q (want rule, learned, or blend)", s)
	}
}

// RiskLevel is the coarse greenwashing-risk label shown to end users.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
)

// TransparencyComponents holds the three rule-based sub-scores, each in
// [0,100]. Overall combines them with convex weights, so it stays in range
// whenever the components do.
type TransparencyComponents struct {
	UseOfProceedsClarity float64 `json:"use_of_proceeds_clarity"`
	ReportingPractices   float64 `json:"reporting_practices"`
	VerificationStrength float64 `json:"verification_strength"`
}

// ImpactPrediction compares an issuer's claimed environmental impact with an
// independently estimated one. All fields are nullable; Gap is present only
// when both Claimed and Predicted are.
type ImpactPrediction struct {
	Claimed     *float64 `json:"claimed"`
	Predicted   *float64 `json:"predicted"`
	Uncertainty *float64 `json:"uncertainty"`
	Gap         *float64 `json:"gap"`
}

// ScoreResult is the engine's sole output artifact. It is constructed once
// per call and never mutated afterwards.
type ScoreResult struct {
	Mode              Mode                   `json:"mode"`
	TransparencyScore float64                `json:"transparency_score"`
	RuleBasedScore    float64                `json:"rule_based_score"`
	MLScore           *float64               `json:"ml_score"`
	Components        TransparencyComponents `json:"components"`
	Impact            ImpactPrediction       `json:"impact_prediction"`
	GreenwashingRisk  RiskLevel              `json:"greenwashing_risk"`
	Explanations      []string               `json:"explanations"`
}
