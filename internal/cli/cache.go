package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/cache"
	"github.com/matzehuels/xkcdify/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
		Long: `Manage the result cache.

Maintenance works on file caches. Redis and MongoDB expire entries on their
own.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePruneCommand())

	return cmd
}

// fileCache opens the configured cache, which must be a file cache. exists
// is false when the cache directory has not been created yet.
func (c *CLI) fileCache() (fc *cache.FileCache, exists bool, err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, false, err
	}
	b, err := cache.ParseBackend(c.cacheBackend(cfg))
	if err != nil {
		return nil, false, err
	}
	if b.Kind != cache.BackendFile {
		return nil, false, errors.New(errors.ErrCodeUnsupported, "cache maintenance needs a file cache, not %s", b.Kind)
	}
	if _, err := os.Stat(b.Location); os.IsNotExist(err) {
		return nil, false, nil
	}
	fc, err = cache.NewFileCache(b.Location)
	if err != nil {
		return nil, false, err
	}
	return fc, true, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, exists, err := c.fileCache()
			if err != nil {
				return err
			}
			if !exists {
				printInfo("Cache is empty")
				return nil
			}

			count, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, exists, err := c.fileCache()
			if err != nil {
				return err
			}
			if !exists {
				printInfo("Cache is empty")
				return nil
			}

			count, err := fc.Prune()
			if err != nil {
				return err
			}
			printSuccess("Pruned %d expired entries", count)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, exists, err := c.fileCache()
			if err != nil {
				return err
			}
			if !exists {
				printInfo("Cache is empty")
				return nil
			}

			st, err := fc.Stats()
			if err != nil {
				return err
			}
			printKeyValue("Directory", fc.Dir())
			printKeyValue("Entries", fmt.Sprint(st.Entries))
			printKeyValue("Expired", fmt.Sprint(st.Expired))
			printKeyValue("Size", formatBytes(st.Bytes))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.Redact(c.cacheBackend(cfg)))
			return nil
		},
	}
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
