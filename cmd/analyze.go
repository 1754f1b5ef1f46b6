package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rsm-13/green-prism/internal/model"
	"github.com/rsm-13/green-prism/internal/scorer"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a single disclosure text",
	Long: `Score issuer disclosure text for transparency and impact realism.

Examples:
  # Score text directly in rule mode
  analyze --text "Proceeds will be allocated to solar projects..."

  # Score a file with a claimed impact, blending rule and learned scores
  analyze --file disclosure.txt --claimed 12000 --amount 250000000 --mode blend

  # Machine-readable output
  analyze --text "..." --json`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("text", "", "disclosure text to score")
	f.String("file", "", "path to a file containing the disclosure text")
	f.Float64("claimed", 0, "claimed impact in tons CO2 avoided")
	f.Float64("amount", 0, "issuance amount in USD")
	f.String("category", "", "project category")
	f.String("mode", "rule", "scoring mode: rule, learned, or blend")
	f.Bool("json", false, "emit the full result as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")
	modeStr, _ := cmd.Flags().GetString("mode")
	asJSON, _ := cmd.Flags().GetBool("json")
	category, _ := cmd.Flags().GetString("category")

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return eris.Wrapf(err, "analyze: read %s", file)
		}
		text = string(data)
	}
	if text == "" {
		return eris.New("analyze: --text or --file is required")
	}

	mode, err := model.ParseMode(modeStr)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	req := scorer.Request{
		Text:            text,
		ProjectCategory: category,
		Mode:            mode,
	}
	if cmd.Flags().Changed("claimed") {
		v, _ := cmd.Flags().GetFloat64("claimed")
		req.ClaimedImpactTons = &v
	}
	if cmd.Flags().Changed("amount") {
		v, _ := cmd.Flags().GetFloat64("amount")
		req.AmountIssuedUSD = &v
	}

	result := engine.Score(req)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "analyze: encode result")
	}

	printScoreResult(result)
	return nil
}

func printScoreResult(r *model.ScoreResult) {
	fmt.Printf("Transparency score: %.1f / 100 (%s mode)\n", r.TransparencyScore, r.Mode)
	fmt.Printf("Greenwashing risk:  %s\n", r.GreenwashingRisk)
	fmt.Println("\nComponents:")
	fmt.Printf("  %-25s %.1f\n", "use_of_proceeds_clarity", r.Components.UseOfProceedsClarity)
	fmt.Printf("  %-25s %.1f\n", "reporting_practices", r.Components.ReportingPractices)
	fmt.Printf("  %-25s %.1f\n", "verification_strength", r.Components.VerificationStrength)
	fmt.Printf("  %-25s %.1f\n", "rule_based_score", r.RuleBasedScore)
	if r.MLScore != nil {
		fmt.Printf("  %-25s %.1f\n", "ml_score", *r.MLScore)
	}

	if r.Impact.Predicted != nil {
		fmt.Println("\nImpact:")
		if r.Impact.Claimed != nil {
			fmt.Printf("  %-25s %.1f\n", "claimed_tco2", *r.Impact.Claimed)
		}
		fmt.Printf("  %-25s %.1f\n", "predicted_tco2", *r.Impact.Predicted)
		fmt.Printf("  %-25s %.1f\n", "uncertainty_tco2", *r.Impact.Uncertainty)
		if r.Impact.Gap != nil {
			fmt.Printf("  %-25s %.1f\n", "gap_tco2", *r.Impact.Gap)
		}
	}

	fmt.Println("\nExplanations:")
	for _, e := range r.Explanations {
		fmt.Printf("  - %s\n", e)
	}
}
