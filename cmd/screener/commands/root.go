package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "A-share screening and classification pipeline",
	Long: `A-share stock screener backed by Tushare market data.

Qualifies the listed universe against venue, ETF and price filters, then
classifies candidates by consecutive limit-up streaks and sustained
uptrends from historical daily bars.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener universe
  go run ./cmd/screener screen --mode all --out exports
  go run ./cmd/screener serve
  go run ./cmd/screener cache status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
