package scorer

import (
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/config"
	"github.com/rsm-13/green-prism/internal/estimate"
	"github.com/rsm-13/green-prism/internal/model"
)

// MLScorer is the learned-score collaborator. Score returns false when the
// model artifact is unavailable; that is a soft condition, never an error.
type MLScorer interface {
	Score(text string) (float64, bool)
}

// Request carries one disclosure through the engine. Nullable numeric inputs
// are pointers; absence is a valid state.
type Request struct {
	Text              string
	ClaimedImpactTons *float64
	AmountIssuedUSD   *float64
	ProjectCategory   string
	Mode              model.Mode
}

// Engine scores issuer disclosures. The per-call path is pure and stateless;
// the only shared state is inside the injected MLScorer, which manages its
// own at-most-once artifact load.
type Engine struct {
	cfg       config.EngineConfig
	impactCfg config.ImpactConfig
	ml        MLScorer
}

// New creates an Engine. ml may be nil, in which case learned and blend
// requests always degrade to rule-only scoring.
func New(cfg config.EngineConfig, impactCfg config.ImpactConfig, ml MLScorer) *Engine {
	return &Engine{cfg: cfg, impactCfg: impactCfg, ml: ml}
}

// Score assesses one disclosure and returns the full result record. It never
// fails: any text (including empty) produces a bounded result, and missing
// numeric inputs yield null impact fields.
func (e *Engine) Score(req Request) *model.ScoreResult {
	text := Normalize(req.Text)
	feats := ExtractFeatures(text)
	components := ScoreComponents(feats)
	ruleScore := Overall(components, e.cfg)

	var mlScore *float64
	if req.Mode != model.ModeRule && e.ml != nil {
		if s, ok := e.ml.Score(text); ok {
			mlScore = &s
		}
	}

	final, source := Blend(req.Mode, ruleScore, mlScore)
	impact := estimate.Impact(req.ClaimedImpactTons, req.AmountIssuedUSD, req.ProjectCategory, e.impactCfg)
	risk := RiskLabel(final, e.cfg.RiskLowThreshold)
	explanations := BuildExplanations(feats, components, req.Mode, source, impact)

	zap.L().Debug("scorer: disclosure scored",
		zap.String("requested_mode", string(req.Mode)),
		zap.String("source", string(source)),
		zap.Float64("transparency_score", final),
		zap.Int("word_count", feats.WordCount),
	)

	return &model.ScoreResult{
		Mode:              source,
		TransparencyScore: final,
		RuleBasedScore:    ruleScore,
		MLScore:           mlScore,
		Components:        components,
		Impact:            impact,
		GreenwashingRisk:  risk,
		Explanations:      explanations,
	}
}
