package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/market"
	"github.com/rsm-13/green-prism/pkg/stooq"
)

var marketCmd = &cobra.Command{
	Use:   "market [symbol]",
	Short: "Show market price history for a green bond index or ETF",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		days, _ := cmd.Flags().GetInt("days")
		live, _ := cmd.Flags().GetBool("live")
		asJSON, _ := cmd.Flags().GetBool("json")

		symbol := cfg.Market.DefaultSymbol
		if len(args) > 0 {
			symbol = args[0]
		}

		var points []market.Point
		if live {
			client := stooq.NewClient(stooq.WithBaseURL(cfg.Market.StooqBaseURL))
			history, err := client.DailyHistory(ctx, symbol, days)
			if err != nil {
				return eris.Wrapf(err, "market: live history for %s", symbol)
			}
			for _, p := range history {
				points = append(points, market.Point(p))
			}
		} else {
			provider := market.NewProvider(cfg.Market.SeriesPath)
			var err error
			points, err = provider.Series(symbol, days)
			if err != nil {
				return eris.Wrapf(err, "market: series for %s", symbol)
			}
		}

		zap.L().Info("market history fetched",
			zap.String("symbol", symbol),
			zap.Int("points", len(points)),
			zap.Bool("live", live),
		)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(points), "market: encode")
		}

		if len(points) == 0 {
			fmt.Println("No observations.")
			return nil
		}
		first, last := points[0], points[len(points)-1]
		change := (last.Value - first.Value) / first.Value * 100
		fmt.Printf("%s: %d observations, latest %.2f (%+.1f%% over window)\n",
			symbol, len(points), last.Value, change)
		return nil
	},
}

func init() {
	marketCmd.Flags().Int("days", 365, "trailing window in days")
	marketCmd.Flags().Bool("live", false, "fetch live history from Stooq instead of the local series CSV")
	marketCmd.Flags().Bool("json", false, "emit the series as JSON")
	rootCmd.AddCommand(marketCmd)
}
