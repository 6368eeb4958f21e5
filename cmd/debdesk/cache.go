package debdesk

import (
	"fmt"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/bashfulrobot/debdesk/internal/pkg"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the download cache",
	Long: `The cache keeps downloaded archives such as Nerd Fonts and the CUDA keyring so
re-runs do not fetch them again. It lives in ~/.cache/debdesk by default.`,
	Example: `  debdesk cache stats    # Show cache statistics
  debdesk cache clear    # Remove all cached downloads`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached downloads",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func newCacheManager() *pkg.CacheManager {
	return pkg.NewCacheManager(config.SlogLogger(), afero.NewOsFs())
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	stats, err := newCacheManager().GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache Directory: %s\n", stats.CacheDir)
	fmt.Fprintf(out, "Total Files:     %d\n", stats.TotalFiles)
	fmt.Fprintf(out, "Total Size:      %s\n", formatBytes(stats.TotalSize))
	if stats.LastModified.IsZero() {
		fmt.Fprintf(out, "Last Modified:   Never\n")
	} else {
		fmt.Fprintf(out, "Last Modified:   %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cacheManager := newCacheManager()

	stats, err := cacheManager.GetCacheStats()
	if err != nil {
		config.Warning("Failed to get cache stats before clearing", "error", err)
	}
	if err := cacheManager.ClearCache(); err != nil {
		return err
	}

	if stats != nil && stats.TotalFiles > 0 {
		config.Success(fmt.Sprintf("Cleared cache: %d files (%s) removed", stats.TotalFiles, formatBytes(stats.TotalSize)))
	} else {
		config.Success("Cache cleared (was already empty)")
	}
	return nil
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
