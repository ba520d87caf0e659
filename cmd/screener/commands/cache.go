package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhzhou/ashare-screener/internal/barcache"
	"github.com/mhzhou/ashare-screener/pkg/config"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the daily bar cache",
	Long: `Manages the on-disk daily bar cache.

Cached entries expire after CACHE_TTL (default 24h); expired rows stay
on disk until purged or overwritten.

Subcommands:
  status  - entry counts and freshness
  purge   - drop every cached entry

Example:
  go run ./cmd/screener cache status
  go run ./cmd/screener cache purge`,
}

var (
	cacheStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show cache entry counts and freshness",
		RunE:  runCacheStatus,
	}

	cachePurgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Drop every cached entry",
		RunE:  runCachePurge,
	}
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}

// openCache opens the bar cache without wiring the market data pipeline,
// so cache maintenance never touches the Tushare API.
func openCache() (*barcache.Cache, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}
	log := logger.New(cfg)

	cache, err := barcache.Open(cfg.Cache.Path, cfg.Cache.TTL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open bar cache: %w", err)
	}
	return cache, cfg, nil
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cache, cfg, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	total, fresh, err := cache.Stats()
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	PrintDoubleSeparator()
	fmt.Println("  Bar Cache Status")
	PrintSeparator()
	fmt.Printf("  Path      : %s\n", cfg.Cache.Path)
	fmt.Printf("  TTL       : %s\n", cfg.Cache.TTL)
	fmt.Printf("  Entries   : %d\n", total)
	fmt.Printf("  Fresh     : %d\n", fresh)
	fmt.Printf("  Expired   : %d\n", total-fresh)
	PrintSeparator()

	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cache, _, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Purge()
	if err != nil {
		PrintError(fmt.Sprintf("Purge failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Purged %d cached entries", n))
	return nil
}
