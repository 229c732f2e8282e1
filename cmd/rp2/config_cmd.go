package main

import (
	"github.com/eprbell/rp2go/internal/config"
	"github.com/spf13/cobra"
)

var configShowPath string

func init() {
	configShowCmd.Flags().StringVar(&configShowPath, "config", "", "Accounting configuration file (required)")
	configShowCmd.MarkFlagRequired("config")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved accounting configuration",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configShowPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if humanOutput {
		outputHuman("assets: %v\nexchanges: %v\nholders: %v\n", cfg.Assets, cfg.Exchanges, cfg.Holders)
		if cfg.FromYear != 0 || cfg.ToYear != 0 {
			outputHuman("years: %d-%d\n", cfg.FromYear, cfg.ToYear)
		}
		return nil
	}
	return outputJSON(cfg)
}
