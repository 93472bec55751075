package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Horizon - hybrid price forecasting",
	Long: `Horizon produces daily price forecasts for configured instruments by
combining a saturating growth trend model with gradient-boosted residual
correction, and renders the results as reports and monthly summaries.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
