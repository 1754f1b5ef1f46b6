package scorer

import (
	"math"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/model"
)

// Bounded additive rule constants. Each sub-score starts from a small base,
// adds fixed bonuses for boolean signals and scaled bonuses for densities,
// then clamps to [0,100]. Additive-bounded rules stay monotone in every
// signal and cannot be blown up by keyword stuffing.
const (
	uopBase           = 20.0
	uopLanguageBonus  = 40.0
	envDensityScale   = 30.0
	numericBonusCap   = 10 // at most 10 numeric tokens count, 1 point each

	reportingBase          = 10.0
	reportingLanguageBonus = 50.0
	kpiLanguageBonus       = 20.0
	kpiDensityScale        = 20.0

	verificationBase          = 10.0
	verificationLanguageBonus = 60.0
	// Reporting language correlates with verifiable claims.
	reportingCorrelationBonus = 10.0
)

// ScoreComponents maps text features to the three transparency sub-scores.
func ScoreComponents(f TextFeatures) model.TransparencyComponents {
	uop := uopBase
	if f.HasUseOfProceeds {
		uop += uopLanguageBonus
	}
	uop += f.EnvironmentalFocus * envDensityScale
	uop += float64(min(f.NumericTokens, numericBonusCap))

	reporting := reportingBase
	if f.HasReporting {
		reporting += reportingLanguageBonus
	}
	if f.HasKPI {
		reporting += kpiLanguageBonus
	}
	reporting += f.KPIDensity * kpiDensityScale

	verification := verificationBase
	if f.HasVerification {
		verification += verificationLanguageBonus
	}
	if f.HasReporting {
		verification += reportingCorrelationBonus
	}

	return model.TransparencyComponents{
		UseOfProceedsClarity: clamp100(uop),
		ReportingPractices:   clamp100(reporting),
		VerificationStrength: clamp100(verification),
	}
}

// Overall combines the sub-scores with the configured convex weights and
// rounds to one decimal.
func Overall(c model.TransparencyComponents, cfg config.EngineConfig) float64 {
	score := cfg.UseOfProceedsWeight*c.UseOfProceedsClarity +
		cfg.ReportingWeight*c.ReportingPractices +
		cfg.VerificationWeight*c.VerificationStrength
	return round1(score)
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
