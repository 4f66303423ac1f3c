package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the file cache of GraphQL responses",
		Long: `Inspect or empty the file cache of GraphQL responses.

Only the file backend is managed here. Redis and mongo entries expire on
their own.`,
	}

	var expired bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached responses",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			var n int
			if expired {
				n, err = fc.PruneExpired(time.Now())
			} else {
				n, err = fc.Clear()
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			switch {
			case n > 0:
				printSuccess(c.Out, "Cleared %d cached entries", n)
			case expired:
				printInfo(c.Out, "No expired entries")
			default:
				printInfo(c.Out, "Cache is empty")
			}
			printDetail(c.Out, "Directory: %s", fc.Dir())
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expired, "expired", false, "only delete entries whose TTL has passed")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}

	cmd.AddCommand(clearCmd, pathCmd)
	return cmd
}

func (c *CLI) openFileCache() (*cache.FileCache, error) {
	dir, err := c.fileCacheDir()
	if err != nil {
		return nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return fc, nil
}

// fileCacheDir resolves the file cache directory. It also serves when
// caching is off, since --cache runs still write there.
func (c *CLI) fileCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	switch cfg.Cache.Backend {
	case cache.BackendRedis, cache.BackendMongo:
		return "", fmt.Errorf("cache backend is %q; only the file cache is managed by this command", cfg.Cache.Backend)
	}
	dir, err := cfg.FileCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
