package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/pkg/plugin"
)

// pluginCommand shows the configuration the server stores for a plugin.
func (c *CLI) pluginCommand() *cobra.Command {
	var (
		id    string
		flags cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Show the plugin configuration and configure panel flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			if id == "" {
				id = s.cfg.PluginID
			}
			settings, err := s.runner.Plugins.Settings(ctx, id)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			flag := plugin.FlagUnset
			if raw, ok := settings[plugin.OptionsKey]; ok {
				flag = plugin.ParseFlag(raw)
			}

			printKeyValue(c.Out, "plugin", id)
			printKeyValue(c.Out, plugin.OptionsKey, flag.String())
			if len(keys) > 0 {
				printKeyValue(c.Out, "keys", strings.Join(keys, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "plugin id (default from config, "+plugin.DefaultID+")")
	flags.register(cmd)

	return cmd
}
