package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/dataset"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a unified bonds CSV into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrapf(err, "import: open %s", importCSVPath)
		}
		defer f.Close()

		bonds, err := dataset.ParseBonds(f)
		if err != nil {
			return eris.Wrap(err, "import: parse bonds")
		}

		st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertBonds(ctx, bonds)
		if err != nil {
			return eris.Wrap(err, "import: upsert bonds")
		}

		zap.L().Info("import complete",
			zap.Int("imported", n),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to bonds CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
