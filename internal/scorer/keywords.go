package scorer

// KeywordTableVersion identifies the phrase tables below. Bump it whenever a
// phrase list changes so persisted scores can be traced to the vocabulary
// that produced them.
const KeywordTableVersion = "2025-06"

// KeywordCategory names one phrase table used by the feature extractor.
type KeywordCategory string

const (
	CategoryUseOfProceeds KeywordCategory = "use_of_proceeds"
	CategoryReporting     KeywordCategory = "reporting"
	CategoryVerification  KeywordCategory = "verification"
	CategoryKPI           KeywordCategory = "kpi"
	CategoryEnvironmental KeywordCategory = "environmental"
)

// keywordTables maps each category to its lowercase phrase list. Matching is
// plain case-insensitive substring search; multi-word phrases must appear
// verbatim.
var keywordTables = map[KeywordCategory][]string{
	CategoryUseOfProceeds: {
		"use of proceeds",
		"use-of-proceeds",
		"allocated to",
		"allocation of proceeds",
		"proceeds will be used",
	},
	CategoryReporting: {
		"annual report",
		"annual reporting",
		"impact report",
		"reporting",
		"disclosure",
		"monitoring",
	},
	CategoryVerification: {
		"second party opinion",
		"second-party opinion",
		"external review",
		"third party verification",
		"third-party verification",
		"assurance",
		"spo by",
		"cicero",
		"sustainalytics",
		"vigeo",
	},
	CategoryKPI: {
		"kpi",
		"key performance indicator",
		"metric",
		"indicator",
		"target",
		"baseline",
	},
	CategoryEnvironmental: {
		"co2",
		"carbon",
		"emissions",
		"greenhouse gas",
		"ghg",
		"renewable",
		"solar",
		"wind",
		"geothermal",
		"hydro",
		"energy efficiency",
		"energy-efficient",
		"electric vehicle",
		"ev charging",
		"biodiversity",
		"climate",
		"resilience",
	},
}

// Keywords returns a copy of the phrase list for a category. Unknown
// categories return nil.
func Keywords(cat KeywordCategory) []string {
	phrases, ok := keywordTables[cat]
	if !ok {
		return nil
	}
	out := make([]string, len(phrases))
	copy(out, phrases)
	return out
}
