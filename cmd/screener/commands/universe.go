package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Show the qualified screening universe",
	Long: `Fetches the listed A-share universe and applies the qualification
filters: board exclusion, ETF exclusion and the minimum price floor.

Candidates that pass are printed with their latest quote snapshot.

Example:
  go run ./cmd/screener universe
  go run ./cmd/screener universe --limit 50`,
	RunE: runUniverse,
}

var (
	universeLimit int
)

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().IntVar(&universeLimit, "limit", 0, "print at most N candidates (0 = all)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	start := time.Now()

	candidates, err := app.runner.Universe(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Universe qualification failed: %v", err))
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  Qualified Universe")
	PrintSeparator()

	shown := candidates
	if universeLimit > 0 && universeLimit < len(shown) {
		shown = shown[:universeLimit]
	}

	PrintTableHeader(
		[]string{"Code", "Name", "Exchange", "Industry", "Price", "Chg%"},
		[]int{11, 14, 16, 12, 8, 6},
	)
	for _, c := range shown {
		fmt.Printf("%-11s  %-14s  %-16s  %-12s  %8.2f  %6.2f\n",
			c.TSCode, c.Name, c.ExchangeName, c.Industry, c.LastPrice, c.PctChange)
	}

	PrintSeparator()
	if len(shown) < len(candidates) {
		PrintInfo(fmt.Sprintf("Showing %d of %d candidates", len(shown), len(candidates)))
	}
	PrintSuccess(fmt.Sprintf("%d qualified candidates in %.2fs", len(candidates), time.Since(start).Seconds()))

	return nil
}
