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

var bondsCmd = &cobra.Command{
	Use:   "bonds",
	Short: "List and inspect stored bonds",
}

var bondsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored bonds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		bonds, err := st.ListBonds(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "bonds: list")
		}
		if len(bonds) == 0 {
			fmt.Println("No bonds in store.")
			return nil
		}

		fmt.Printf("%-20s %-40s %-8s %12s\n", "Bond ID", "Issuer", "Country", "Amount ($M)")
		for _, b := range bonds {
			amount := "-"
			if b.AmountIssuedUSD != nil {
				amount = fmt.Sprintf("%.1f", *b.AmountIssuedUSD/1_000_000)
			}
			issuer := b.IssuerName
			if len(issuer) > 40 {
				issuer = issuer[:37] + "..."
			}
			fmt.Printf("%-20s %-40s %-8s %12s\n", b.BondID, issuer, b.Country, amount)
		}
		return nil
	},
}

var bondsShowCmd = &cobra.Command{
	Use:   "show <bond-id>",
	Short: "Show a bond with its disclosure scores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		modeStr, _ := cmd.Flags().GetString("mode")

		mode, err := model.ParseMode(modeStr)
		if err != nil {
			return err
		}

		st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		bond, err := st.GetBond(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "bonds: get %s", args[0])
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		result := engine.Score(scorer.Request{
			Text:              bond.Disclosure(),
			ClaimedImpactTons: bond.ClaimedImpactTons,
			AmountIssuedUSD:   bond.AmountIssuedUSD,
			ProjectCategory:   bond.ProjectCategory,
			Mode:              mode,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(map[string]any{
			"bond":   bond,
			"scores": result,
		}), "bonds: encode")
	},
}

func init() {
	bondsListCmd.Flags().Int("limit", 20, "maximum bonds to list")
	bondsShowCmd.Flags().String("mode", "rule", "scoring mode: rule, learned, or blend")
	bondsCmd.AddCommand(bondsListCmd, bondsShowCmd)
	rootCmd.AddCommand(bondsCmd)
}
