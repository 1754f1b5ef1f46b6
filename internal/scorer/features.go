// Package scorer implements the disclosure scoring engine: text feature
// extraction, rule-based transparency scoring, blending with an optional
// learned score, and explanation rendering.
package scorer

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	wordPattern    = regexp.MustCompile(`\w+`)
	numericPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// TextFeatures is the fixed-shape feature record derived from a normalized
// disclosure. Densities are in [0,1]; counts are non-negative.
type TextFeatures struct {
	LengthChars        int     `json:"length_chars"`
	WordCount          int     `json:"word_count"`
	NumericTokens      int     `json:"numeric_tokens"`
	HasUseOfProceeds   bool    `json:"has_use_of_proceeds"`
	HasReporting       bool    `json:"has_reporting"`
	HasVerification    bool    `json:"has_verification"`
	HasKPI             bool    `json:"has_kpi"`
	EnvironmentalFocus float64 `json:"environmental_focus_score"`
	KPIDensity         float64 `json:"kpi_density"`
}

// Normalize collapses all whitespace runs (including newlines and tabs) to
// single spaces and trims the ends. Total function: empty input maps to "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// ExtractFeatures derives TextFeatures from normalized text. Deterministic,
// no failure modes; empty text yields all-zero features.
func ExtractFeatures(text string) TextFeatures {
	lower := strings.ToLower(text)

	wordCount := len(wordPattern.FindAllStringIndex(lower, -1))
	numericTokens := len(numericPattern.FindAllStringIndex(lower, -1))

	uopHits := countHits(lower, keywordTables[CategoryUseOfProceeds])
	reportingHits := countHits(lower, keywordTables[CategoryReporting])
	verificationHits := countHits(lower, keywordTables[CategoryVerification])
	kpiHits := countHits(lower, keywordTables[CategoryKPI])
	envHits := countHits(lower, keywordTables[CategoryEnvironmental])

	// Normalize densities by sqrt(word count) so long documents cannot
	// accumulate high density through length alone.
	lengthNorm := math.Max(1, math.Sqrt(float64(wordCount)))

	return TextFeatures{
		LengthChars:        len(text),
		WordCount:          wordCount,
		NumericTokens:      numericTokens,
		HasUseOfProceeds:   uopHits > 0,
		HasReporting:       reportingHits > 0,
		HasVerification:    verificationHits > 0,
		HasKPI:             kpiHits > 0,
		EnvironmentalFocus: clamp01(float64(envHits) / lengthNorm),
		KPIDensity:         clamp01(float64(kpiHits) / lengthNorm),
	}
}

// countHits sums substring occurrences of every phrase in a table. The text
// must already be lowercased.
func countHits(lower string, phrases []string) int {
	var n int
	for _, p := range phrases {
		n += strings.Count(lower, p)
	}
	return n
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
