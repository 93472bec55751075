package main

import (
	"fmt"

	"github.com/jadaunkg/horizon/internal/logger"
	"github.com/jadaunkg/horizon/internal/storage/archive"
	"github.com/jadaunkg/horizon/internal/storage/runstore"
	"github.com/spf13/cobra"
)

var (
	runsSymbol string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List completed forecast runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsSymbol, "symbol", "", "filter by symbol")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum entries to show")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	backend, err := archive.Open(cfg.Storage)
	if err != nil {
		return err
	}
	store := runstore.New(backend)

	entries, err := store.ListRuns(cmd.Context(), runstore.ListFilter{
		Symbol: runsSymbol,
		Limit:  runsLimit,
	})
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-8s %-38s %-22s %-10s %8s %8s\n",
		"SYMBOL", "RUN", "GENERATED", "MODE", "MAPE", "R2")
	for _, e := range entries {
		mode := "hybrid"
		mape, r2 := fmt.Sprintf("%.2f%%", e.TestMAPE*100), fmt.Sprintf("%.4f", e.TestR2)
		if e.TrendOnly {
			mode = "trend"
			mape, r2 = "-", "-"
		}
		fmt.Printf("%-8s %-38s %-22s %-10s %8s %8s\n",
			e.Symbol, e.RunID, e.GeneratedAt.Format("2006-01-02 15:04:05"), mode, mape, r2)
	}
	return nil
}
