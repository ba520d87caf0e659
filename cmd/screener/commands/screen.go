package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a screening pass and export the results",
	Long: `Runs the full screening pipeline: qualifies the universe, classifies
each candidate by limit-up streak and sustained uptrend, then writes the
result table to a CSV file.

Modes:
  all     - label every candidate (streak, trend or unmatched)
  streak  - only consecutive limit-up matches
  trend   - only sustained uptrend matches

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode streak
  go run ./cmd/screener screen --mode all --board 主板 --out exports`,
	RunE: runScreen,
}

var (
	screenMode  string
	screenBoard string
	screenOut   string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenMode, "mode", "all", "screening mode (all, streak, trend)")
	screenCmd.Flags().StringVar(&screenBoard, "board", "", "keep only candidates on this board")
	screenCmd.Flags().StringVar(&screenOut, "out", "", "export directory (default from EXPORT_DIR)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mode, err := contracts.ParseMode(screenMode)
	if err != nil {
		return err
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	start := time.Now()

	PrintDoubleSeparator()
	fmt.Printf("  Screening run (mode=%s)\n", mode)
	PrintSeparator()

	result, err := app.runner.Screen(ctx, mode, screenBoard, func(p contracts.Progress) {
		PrintProgress("Screen", p.Batch, p.TotalBatches, p.Percent)
	})
	if err != nil {
		PrintError(fmt.Sprintf("Screening failed: %v", err))
		return err
	}

	printResultTable(result)

	dir := screenOut
	if dir == "" {
		dir = app.cfg.ExportDir
	}
	path, err := app.runner.ExportToFile(result, dir)
	if err != nil {
		PrintError(fmt.Sprintf("CSV export failed: %v", err))
		return err
	}

	PrintSeparator()
	for reason, n := range result.Skipped {
		PrintInfo(fmt.Sprintf("Skipped %d candidates: %s", n, reason))
	}
	PrintSuccess(fmt.Sprintf("%d rows exported to %s in %.2fs",
		len(result.Rows), path, time.Since(start).Seconds()))

	return nil
}

func printResultTable(result *contracts.RunResult) {
	PrintTableHeader(
		[]string{"Code", "Name", "Class", "Streak", "Ret60%", "Vol20%"},
		[]int{11, 14, 9, 6, 8, 8},
	)
	for _, row := range result.Rows {
		streak, ret, vol := "", "", ""
		switch row.Class {
		case contracts.ClassStreak:
			streak = fmt.Sprintf("%d", row.StreakDays)
		case contracts.ClassTrend:
			ret = fmt.Sprintf("%.2f", row.Return60)
			vol = fmt.Sprintf("%.2f", row.Volatility20)
		}
		fmt.Printf("%-11s  %-14s  %-9s  %6s  %8s  %8s\n",
			row.TSCode, row.Name, row.Class, streak, ret, vol)
	}
}
