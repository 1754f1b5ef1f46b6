// Package estimate predicts realized environmental impact from issuance
// metadata and compares it against issuer claims.
package estimate

import (
	"math"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/model"
)

// Impact estimates realized CO2 impact from a claimed figure and/or an
// issuance amount, in tiered order:
//
//  1. Amount tier: a positive issuance amount gives an independent
//     intensity-based prediction. Preferred, because the claim itself is the
//     quantity under scrutiny; discounting it to produce the gap would make
//     the gap circular.
//  2. Claim tier: no amount, but a claim exists. Predict a conservative
//     realization fraction of the claim.
//  3. Nothing to estimate: all fields null.
//
// The project category is accepted for interface stability but does not yet
// influence the estimate.
func Impact(claimedTons, amountUSD *float64, _ string, cfg config.ImpactConfig) model.ImpactPrediction {
	if amountUSD != nil && *amountUSD > 0 {
		amountMUSD := *amountUSD / 1_000_000.0
		predicted := cfg.IntensityTonsPerMUSD * amountMUSD
		uncertainty := math.Max(cfg.AmountUncertaintyPct*predicted, cfg.UncertaintyFloorTons)

		p := model.ImpactPrediction{
			Claimed:     claimedTons,
			Predicted:   &predicted,
			Uncertainty: &uncertainty,
		}
		if claimedTons != nil {
			gap := *claimedTons - predicted
			p.Gap = &gap
		}
		return p
	}

	if claimedTons != nil {
		claimed := *claimedTons
		predicted := cfg.RealizationFraction * claimed
		uncertainty := cfg.ClaimUncertaintyPct * claimed
		gap := claimed - predicted
		return model.ImpactPrediction{
			Claimed:     &claimed,
			Predicted:   &predicted,
			Uncertainty: &uncertainty,
			Gap:         &gap,
		}
	}

	return model.ImpactPrediction{}
}
