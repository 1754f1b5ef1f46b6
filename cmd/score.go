package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsm-13/green-prism/internal/model"
	"github.com/rsm-13/green-prism/internal/scorer"
)

// bondScore pairs a stored bond with its scoring result for output.
type bondScore struct {
	Bond   model.Bond
	Result *model.ScoreResult
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score stored bond disclosures in bulk",
	Long: `Score the disclosure text of bonds in the store.

Examples:
  # Score up to 100 bonds in rule mode
  score --limit 100

  # Blend rule and learned scores, persist results
  score --mode blend --save

  # Export to CSV
  score --limit 500 --format csv --output scores.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("bond", "", "score a single bond by ID")
	f.String("mode", "rule", "scoring mode: rule, learned, or blend")
	f.Int("limit", 100, "maximum number of bonds to score")
	f.Int("workers", 4, "concurrent scoring workers")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	f.Bool("save", false, "save results to the disclosure_scores table")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	modeStr, _ := cmd.Flags().GetString("mode")
	bondID, _ := cmd.Flags().GetString("bond")
	limit, _ := cmd.Flags().GetInt("limit")
	workers, _ := cmd.Flags().GetInt("workers")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}
	mode, err := model.ParseMode(modeStr)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	st, err := newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	log := zap.L().With(zap.String("command", "score"))

	var bonds []model.Bond
	if bondID != "" {
		bond, err := st.GetBond(ctx, bondID)
		if err != nil {
			return eris.Wrapf(err, "score: bond %s", bondID)
		}
		bonds = []model.Bond{*bond}
	} else {
		bonds, err = st.ListBonds(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "score: list bonds")
		}
	}
	if len(bonds) == 0 {
		fmt.Println("No bonds in store. Run 'import --csv bonds.csv' first.")
		return nil
	}

	log.Info("starting bulk scoring",
		zap.Int("bonds", len(bonds)),
		zap.String("mode", string(mode)),
		zap.Int("workers", workers),
	)

	// Scoring is pure; workers only bound CPU use on large datasets.
	results := make([]bondScore, len(bonds))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, bond := range bonds {
		i, bond := i, bond
		g.Go(func() error {
			req := scorer.Request{
				Text:              bond.Disclosure(),
				ClaimedImpactTons: bond.ClaimedImpactTons,
				AmountIssuedUSD:   bond.AmountIssuedUSD,
				ProjectCategory:   bond.ProjectCategory,
				Mode:              mode,
			}
			results[i] = bondScore{Bond: bond, Result: engine.Score(req)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "score: bulk scoring")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.TransparencyScore > results[j].Result.TransparencyScore
	})

	if err := outputScores(results, format, outputPath); err != nil {
		return err
	}

	if save {
		var saved int
		for _, r := range results {
			if err := st.SaveScore(ctx, r.Bond.BondID, r.Result); err != nil {
				return eris.Wrapf(err, "score: save %s", r.Bond.BondID)
			}
			saved++
		}
		fmt.Printf("Saved %d scores to disclosure_scores\n", saved)
	}

	printScoreSummary(results)
	return nil
}

func outputScores(results []bondScore, format, outputPath string) error {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	switch format {
	case "csv":
		return writeScoresCSV(w, results)
	default:
		return writeScoresTable(w, results)
	}
}

func writeScoresCSV(w io.Writer, results []bondScore) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"bond_id", "issuer_name", "country", "mode", "transparency_score", "rule_based_score", "greenwashing_risk"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for _, r := range results {
		row := []string{
			r.Bond.BondID,
			r.Bond.IssuerName,
			r.Bond.Country,
			string(r.Result.Mode),
			fmt.Sprintf("%.1f", r.Result.TransparencyScore),
			fmt.Sprintf("%.1f", r.Result.RuleBasedScore),
			string(r.Result.GreenwashingRisk),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeScoresTable(w io.Writer, results []bondScore) error {
	header := fmt.Sprintf("%-20s %-40s %-8s %-7s %7s %-6s\n",
		"Bond ID", "Issuer", "Country", "Mode", "Score", "Risk")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 92)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, r := range results {
		issuer := r.Bond.IssuerName
		if len(issuer) > 40 {
			issuer = issuer[:37] + "..."
		}
		id := r.Bond.BondID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		line := fmt.Sprintf("%-20s %-40s %-8s %-7s %7.1f %-6s\n",
			id, issuer, r.Bond.Country, r.Result.Mode, r.Result.TransparencyScore, r.Result.GreenwashingRisk)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printScoreSummary(results []bondScore) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	var sum, maxScore float64
	minScore := 101.0
	var low int
	for _, r := range results {
		s := r.Result.TransparencyScore
		sum += s
		if s > maxScore {
			maxScore = s
		}
		if s < minScore {
			minScore = s
		}
		if r.Result.GreenwashingRisk == model.RiskLow {
			low++
		}
	}
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Total scored:  %d\n", len(results))
	fmt.Printf("Low risk:      %d (%.1f%%)\n", low, float64(low)/float64(len(results))*100)
	fmt.Printf("Score range:   %.1f - %.1f\n", minScore, maxScore)
	fmt.Printf("Average score: %.1f\n", sum/float64(len(results)))
}
