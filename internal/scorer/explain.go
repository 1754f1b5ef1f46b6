package scorer

import (
	"fmt"

	"github.com/rsm-13/green-prism/internal/model"
)

// BuildExplanations renders short human-readable rationale strings from the
// structured scoring output. Deterministic template rendering only: absent
// impact fields produce neutral phrasing, never an error.
func BuildExplanations(f TextFeatures, c model.TransparencyComponents, requested, actual model.Mode, impact model.ImpactPrediction) []string {
	var out []string

	if f.HasUseOfProceeds {
		out = append(out, fmt.Sprintf("Use-of-proceeds allocation language found (clarity %.1f/100).", c.UseOfProceedsClarity))
	} else {
		out = append(out, "No explicit use-of-proceeds allocation language detected.")
	}

	if f.HasReporting {
		out = append(out, fmt.Sprintf("Reporting and monitoring commitments present (reporting %.1f/100).", c.ReportingPractices))
	} else {
		out = append(out, "No reporting or monitoring commitments detected.")
	}

	if f.HasVerification {
		out = append(out, fmt.Sprintf("Third-party verification language present (verification %.1f/100).", c.VerificationStrength))
	} else {
		out = append(out, "No third-party verification or external review mentioned.")
	}

	if requested != model.ModeRule && actual == model.ModeRule {
		out = append(out, "Learned model unavailable; rule-based score used.")
	}

	switch {
	case impact.Gap != nil:
		out = append(out, fmt.Sprintf(
			"Claimed %.0f tCO2 vs estimated %.0f ± %.0f tCO2: gap of %.0f tCO2.",
			*impact.Claimed, *impact.Predicted, *impact.Uncertainty, *impact.Gap))
	case impact.Predicted != nil:
		out = append(out, fmt.Sprintf(
			"Estimated realized impact %.0f ± %.0f tCO2; no claimed figure to compare.",
			*impact.Predicted, *impact.Uncertainty))
	default:
		out = append(out, "No impact figures provided; realization gap not estimated.")
	}

	return out
}
