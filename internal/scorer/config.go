package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rsm-13/green-prism/internal/config"
)

// ValidateConfig checks that the engine and impact configs are internally
// consistent. Called once at the CLI boundary before any scoring.
func ValidateConfig(engine config.EngineConfig, impact config.ImpactConfig) error {
	var errs []string

	weights := map[string]float64{
		"use_of_proceeds_weight": engine.UseOfProceedsWeight,
		"reporting_weight":       engine.ReportingWeight,
		"verification_weight":    engine.VerificationWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// The combination must be convex so the overall score stays in [0,100].
	sum := engine.UseOfProceedsWeight + engine.ReportingWeight + engine.VerificationWeight
	if math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Sprintf("component weights must sum to 1.0, got %.3f", sum))
	}

	if engine.RiskLowThreshold < 0 || engine.RiskLowThreshold > 100 {
		errs = append(errs, "risk_low_threshold must be between 0 and 100")
	}

	if impact.IntensityTonsPerMUSD <= 0 {
		errs = append(errs, "intensity_tons_per_musd must be > 0")
	}
	if impact.RealizationFraction <= 0 || impact.RealizationFraction > 1 {
		errs = append(errs, "realization_fraction must be in (0, 1]")
	}
	if impact.AmountUncertaintyPct < 0 || impact.ClaimUncertaintyPct < 0 {
		errs = append(errs, "uncertainty percentages must be >= 0")
	}
	if impact.UncertaintyFloorTons < 0 {
		errs = append(errs, "uncertainty_floor_tons must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
