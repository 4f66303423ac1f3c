package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/pipeline"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	filter    string
	exclude   exclusionFlags
	pick      bool
	formats   string
	output    string
	height    int
	title     string
	detailed  bool
	rankDir   string
	scale     float64
	configure bool
	pluginID  string
	cache     cacheFlags
}

// drawCommand fetches tags, applies exclusions and writes the rendered graph.
func (c *CLI) drawCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw the tag hierarchy",
		Long: `Draw the tag hierarchy as an HTML page (vis-network), widget payload,
graph JSON, Graphviz DOT, SVG, PNG or PDF.

Tags are excluded by id, by name glob, or by a second filter whose matches
are left out. Edges from excluded tags are dropped; edges into excluded
tags are kept and point at dangling targets.

PNG and PDF require rsvg-convert on PATH.`,
		Example: `  taggraph draw
  taggraph draw -f html,json -o out/tags
  taggraph draw --exclude-name 'Meta: *' --exclude-id 42
  taggraph draw --filter favorites.yaml --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var configure *bool
			if cmd.Flags().Changed("configure") {
				configure = &opts.configure
			}
			return c.runDraw(cmd.Context(), opts, configure)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.filter, "filter", "", "tag filter file (json, yaml, toml); default: tags with parents or children")
	opts.exclude.register(cmd)
	f.BoolVar(&opts.pick, "pick", false, "choose excluded tags interactively before drawing")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): html (default), vis, json, dot, svg, png, pdf (comma-separated)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.IntVar(&opts.height, "height", 0, "canvas height in px (default from config)")
	f.StringVar(&opts.title, "title", "", "HTML page title")
	f.BoolVar(&opts.detailed, "detailed", false, "show tag ids and scene counts (dot, svg, png, pdf)")
	f.StringVar(&opts.rankDir, "rank-dir", "", "Graphviz rank direction: TB (default), LR, BT, RL")
	f.Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "png resolution multiplier")
	f.BoolVar(&opts.configure, "configure", false, "force the vis-network configure panel on or off (default: plugin setting)")
	f.StringVar(&opts.pluginID, "plugin-id", "", "plugin whose options flag toggles the configure panel (default from config)")
	opts.cache.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(pipeline.ValidFormats))
		for f := range pipeline.ValidFormats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("rank-dir", cobra.FixedCompletions(
		[]string{"TB", "LR", "BT", "RL"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runDraw(ctx context.Context, opts drawOpts, configure *bool) error {
	s, err := c.newSession(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer s.Close()

	popts, err := c.pipelineOptions(s, opts, configure)
	if err != nil {
		return err
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := c.draw(ctx, s.runner, popts, opts.pick)
	if errors.Is(err, errors.ErrCodeNoTags) {
		printWarning(c.Out, "%s", errors.UserMessage(err))
		return nil
	}
	if err != nil || res == nil {
		return err
	}
	prog.done(fmt.Sprintf("Drew %d tags", res.Stats.NodeCount))

	paths, err := writeArtifacts(res.Artifacts, popts.Formats, opts.output)
	if err != nil {
		return err
	}

	printSuccess(c.Out, "Drew tag graph")
	printStats(c.Out, res.Stats, res.CacheInfo.TagsHit)
	if res.PanelErr != nil {
		printWarning(c.Out, "configure panel disabled: %s", errors.UserMessage(res.PanelErr))
	}
	for _, p := range paths {
		printFile(c.Out, p)
	}
	return nil
}

// pipelineOptions merges config defaults and flags.
func (c *CLI) pipelineOptions(s *session, opts drawOpts, configure *bool) (pipeline.Options, error) {
	filter, err := loadFilter(opts.filter)
	if err != nil {
		return pipeline.Options{}, err
	}
	popts := pipeline.Options{
		Filter:         filter,
		Formats:        parseFormats(opts.formats),
		Height:         s.cfg.Height,
		Title:          opts.title,
		Detailed:       opts.detailed,
		RankDir:        strings.ToUpper(opts.rankDir),
		Scale:          opts.scale,
		PluginID:       s.cfg.PluginID,
		ConfigurePanel: configure,
	}
	if opts.height > 0 {
		popts.Height = opts.height
	}
	if opts.pluginID != "" {
		popts.PluginID = opts.pluginID
	}
	if err := opts.exclude.apply(s.cfg, &popts); err != nil {
		return pipeline.Options{}, err
	}
	return popts, nil
}

// draw runs the pipeline. With pick set, the user edits the resolved
// exclusions before the graph is built.
func (c *CLI) draw(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, pick bool) (*pipeline.Result, error) {
	spin := c.spinner(ctx, "Fetching tags")
	if !pick {
		res, err := r.Draw(ctx, opts)
		spin.Stop()
		return res, err
	}

	fetched, hit, err := r.FetchTagsWithCacheInfo(ctx, opts.Filter)
	if err != nil {
		spin.Stop()
		return nil, err
	}
	var preselected graph.ExclusionSet
	if len(fetched.Tags) > 0 {
		spin.Update("Resolving exclusions")
		preselected, err = r.ResolveExclusions(ctx, fetched.Tags, opts)
	}
	spin.Stop()
	if err != nil {
		return nil, err
	}
	if len(fetched.Tags) == 0 {
		return r.DrawFetched(ctx, fetched, opts)
	}

	picked, ok, err := runPicker(fetched.Tags, preselected)
	if err != nil {
		return nil, err
	}
	if !ok {
		printInfo(c.Out, "Cancelled")
		return nil, nil
	}

	opts = opts.Clone()
	opts.ExcludeFilter = nil
	opts.ExcludeNames = nil
	opts.ExcludeIDs = picked.IDs()
	res, err := r.DrawFetched(ctx, fetched, opts)
	if res != nil {
		res.CacheInfo.TagsHit = hit
	}
	return res, err
}

// outputPaths maps each format to its file. With one format and an
// explicit output, the output is used as is; otherwise output (or
// "taggraph") is a base path and each format adds its extension.
func outputPaths(formats []string, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = appName
	}
	strip := ""
	for _, ext := range pipeline.FormatExt {
		if strings.HasSuffix(base, ext) && len(ext) > len(strip) {
			strip = ext
		}
	}
	base = strings.TrimSuffix(base, strip)
	for _, f := range formats {
		paths[f] = base + pipeline.FormatExt[f]
	}
	return paths
}

// writeArtifacts writes each rendered format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := outputPaths(formats, output)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		p := paths[f]
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(p, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
