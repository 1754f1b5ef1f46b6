package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func floatPtr(v float64) *float64 { return &v }

func sampleResults() []bondScore {
	return []bondScore{
		{
			Bond: model.Bond{BondID: "gb-001", IssuerName: "Acme Energy", Country: "DE"},
			Result: &model.ScoreResult{
				Mode:              model.ModeRule,
				TransparencyScore: 81.4,
				RuleBasedScore:    81.4,
				GreenwashingRisk:  model.RiskLow,
			},
		},
		{
			Bond: model.Bond{BondID: "gb-002", IssuerName: "Beta Transit", Country: "FR"},
			Result: &model.ScoreResult{
				Mode:              model.ModeBlend,
				TransparencyScore: 48.9,
				RuleBasedScore:    42.1,
				MLScore:           floatPtr(55.7),
				GreenwashingRisk:  model.RiskMedium,
			},
		},
	}
}

func TestWriteScoresCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScoresCSV(&buf, sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"bond_id", "issuer_name", "country", "mode",
		"transparency_score", "rule_based_score", "greenwashing_risk",
	}, records[0])
	assert.Equal(t, []string{"gb-001", "Acme Energy", "DE", "rule", "81.4", "81.4", "low"}, records[1])
	assert.Equal(t, []string{"gb-002", "Beta Transit", "FR", "blend", "48.9", "42.1", "medium"}, records[2])
}

func TestWriteScoresCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScoresCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1) // header only
}

func TestWriteScoresTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScoresTable(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "Bond ID")
	assert.Contains(t, out, "gb-001")
	assert.Contains(t, out, "Acme Energy")
	assert.Contains(t, out, "81.4")
	assert.Contains(t, out, "medium")
}

func TestWriteScoresTableTruncatesLongNames(t *testing.T) {
	results := sampleResults()
	results[0].Bond.IssuerName = strings.Repeat("Very Long Issuer Name ", 4)

	var buf bytes.Buffer
	require.NoError(t, writeScoresTable(&buf, results))
	assert.Contains(t, buf.String(), "...")
}
