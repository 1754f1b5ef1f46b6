package model

// Bond represents one green/sustainable bond record from the unified dataset.
// Numeric fields are pointers because most source datasets are sparse; a nil
// value means the field was absent or not coercible upstream.
type Bond struct {
	BondID            string   `json:"bond_id" csv:"bond_id"`
	SourceDataset     string   `json:"source_dataset" csv:"source_dataset"`
	ISIN              string   `json:"isin,omitempty" csv:"isin"`
	IssuerName        string   `json:"issuer_name" csv:"issuer_name"`
	IssuerType        string   `json:"issuer_type,omitempty" csv:"issuer_type"`
	Country           string   `json:"country,omitempty" csv:"country"`
	Currency          string   `json:"currency,omitempty" csv:"currency"`
	AmountIssuedUSD   *float64 `json:"amount_issued_usd,omitempty" csv:"amount_issued_usd"`
	IssueYear         *int     `json:"issue_year,omitempty" csv:"issue_year"`
	MaturityYear      *int     `json:"maturity_year,omitempty" csv:"maturity_year"`
	UseOfProceeds     string   `json:"use_of_proceeds,omitempty" csv:"use_of_proceeds"`
	DisclosureText    string   `json:"disclosure_text,omitempty" csv:"disclosure_text"`
	ExternalReview    string   `json:"external_review_type,omitempty" csv:"external_review_type"`
	Certification     string   `json:"certification,omitempty" csv:"certification"`
	ClaimedImpactTons *float64 `json:"claimed_impact_co2_tons,omitempty" csv:"claimed_impact_co2_tons"`
	ProjectCategory   string   `json:"project_category,omitempty" csv:"project_category"`
}

// Disclosure returns the text to score for this bond: the dedicated
// disclosure_text field when present, otherwise the use_of_proceeds text.
func (b *Bond) Disclosure() string {
	if b.DisclosureText != "" {
		return b.DisclosureText
	}
	return b.UseOfProceeds
}
