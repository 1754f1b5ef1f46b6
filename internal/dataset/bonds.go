// Package dataset parses green bond CSV exports into the unified bond model.
// Source datasets are sparse and inconsistently typed, so every numeric field
// is read as text and coerced; values that cannot be coerced become null
// rather than errors, which is the contract the scoring engine expects.
package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/model"
)

// bondRow mirrors the unified bonds.csv schema with everything as text.
type bondRow struct {
	BondID            string `csv:"bond_id"`
	SourceDataset     string `csv:"source_dataset"`
	ISIN              string `csv:"isin"`
	IssuerName        string `csv:"issuer_name"`
	IssuerType        string `csv:"issuer_type"`
	Country           string `csv:"country"`
	Currency          string `csv:"currency"`
	AmountIssuedUSD   string `csv:"amount_issued_usd"`
	IssueYear         string `csv:"issue_year"`
	MaturityYear      string `csv:"maturity_year"`
	UseOfProceeds     string `csv:"use_of_proceeds"`
	DisclosureText    string `csv:"disclosure_text"`
	ExternalReview    string `csv:"external_review_type"`
	Certification     string `csv:"certification"`
	ClaimedImpactTons string `csv:"claimed_impact_co2_tons"`
	ProjectCategory   string `csv:"project_category"`
}

// ParseBonds reads a bonds CSV and returns unified bond records. Rows without
// a bond_id get a generated one; rows without an issuer name are skipped.
func ParseBonds(r io.Reader) ([]model.Bond, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	// Missing and extra columns are both tolerated: each source export
	// carries a different subset of the unified schema.
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read CSV header")
	}

	var bonds []model.Bond
	var skipped int
	for {
		var row bondRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "dataset: decode CSV row")
		}

		if strings.TrimSpace(row.IssuerName) == "" {
			skipped++
			continue
		}

		bondID := strings.TrimSpace(row.BondID)
		if bondID == "" {
			bondID = "gb-" + uuid.New().String()
		}

		bonds = append(bonds, model.Bond{
			BondID:            bondID,
			SourceDataset:     strings.TrimSpace(row.SourceDataset),
			ISIN:              strings.TrimSpace(row.ISIN),
			IssuerName:        strings.TrimSpace(row.IssuerName),
			IssuerType:        strings.TrimSpace(row.IssuerType),
			Country:           strings.TrimSpace(row.Country),
			Currency:          strings.TrimSpace(row.Currency),
			AmountIssuedUSD:   coerceFloat(row.AmountIssuedUSD),
			IssueYear:         coerceInt(row.IssueYear),
			MaturityYear:      coerceInt(row.MaturityYear),
			UseOfProceeds:     strings.TrimSpace(row.UseOfProceeds),
			DisclosureText:    strings.TrimSpace(row.DisclosureText),
			ExternalReview:    strings.TrimSpace(row.ExternalReview),
			Certification:     strings.TrimSpace(row.Certification),
			ClaimedImpactTons: coerceFloat(row.ClaimedImpactTons),
			ProjectCategory:   strings.TrimSpace(row.ProjectCategory),
		})
	}

	if skipped > 0 {
		zap.L().Warn("dataset: skipped rows without issuer name", zap.Int("skipped", skipped))
	}
	return bonds, nil
}

// coerceFloat parses a loosely formatted numeric string ("1,200,000.50",
// "$3.5", "  42 ") into a float, returning nil for anything unparseable.
func coerceFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func coerceInt(s string) *int {
	f := coerceFloat(s)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}
