package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsm-13/green-prism/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "green-prism",
	Short: "Green bond disclosure transparency scoring",
	Long:  "Scores issuer disclosure text for green/sustainable bonds, estimates the gap between claimed and realistic environmental impact, and serves bond and market data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
