package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// fetchCommand prints the raw findTags result as JSON.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		filterPath string
		output     string
		flags      cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch tags and print the raw result as JSON",
		Long: `Fetch tags matching a filter and print {count, tags} as JSON.

Without --filter, tags that have parents or children are fetched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter, err := loadFilter(filterPath)
			if err != nil {
				return err
			}

			s, err := c.newSession(ctx, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			spin := c.spinner(ctx, "Fetching tags from "+s.cfg.Endpoint)
			res, hit, err := s.runner.FetchTagsWithCacheInfo(ctx, filter)
			spin.Stop()
			if err != nil {
				return err
			}
			c.Logger.Debug("fetched tags", "count", res.Count, "cached", hit)

			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" {
				_, err = c.Out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(c.Out, "Fetched %d tags", res.Count)
			printFile(c.Out, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&filterPath, "filter", "", "tag filter file (json, yaml, toml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to file instead of stdout")
	flags.register(cmd)

	return cmd
}
