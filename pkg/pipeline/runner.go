package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/graphql"
	"github.com/matzehuels/taggraph/pkg/observability"
	"github.com/matzehuels/taggraph/pkg/plugin"
	"github.com/matzehuels/taggraph/pkg/tags"
)

// Fetch purposes reported to pipeline hooks.
const (
	PurposeTags       = "tags"
	PurposeExclusions = "exclusions"
)

// Runner executes draws against one GraphQL client.
//
// The Runner holds no per-draw state, so one Runner can serve concurrent
// draws with different options.
type Runner struct {
	Tags    *tags.Fetcher
	Plugins *plugin.Client
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(client tags.Doer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Tags:    tags.NewFetcher(client, logger),
		Plugins: plugin.NewClient(client, logger),
		Logger:  logger,
	}
}

// Draw runs fetch, exclusion, build and render in sequence.
//
// When the primary fetch matches no tags, Draw returns the partial result
// together with an ErrCodeNoTags error.
func (r *Runner) Draw(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1: Fetch
	start := time.Now()
	res, hit, err := r.FetchTagsWithCacheInfo(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(start)
	r.Logger.Info("fetched tags",
		"count", res.Count,
		"cached", hit,
		"duration", fetchTime)

	result, err := r.DrawFetched(ctx, res, opts)
	if result != nil {
		result.Stats.FetchTime = fetchTime
		result.CacheInfo.TagsHit = hit
	}
	return result, err
}

// DrawFetched runs exclusion, build and render over an already fetched
// result. It lets callers inspect or edit the primary tags before drawing.
func (r *Runner) DrawFetched(ctx context.Context, res *tags.Result, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if res == nil {
		res = &tags.Result{Tags: []tags.Tag{}}
	}
	result := &Result{
		Tags:  res.Tags,
		Count: res.Count,
	}
	result.Stats.TagCount = len(res.Tags)

	if len(res.Tags) == 0 {
		return result, noTagsError(opts.Filter)
	}

	// Stage 2: Exclude
	start := time.Now()
	excluded, hit, err := r.ResolveExclusionsWithCacheInfo(ctx, res.Tags, opts)
	if err != nil {
		return nil, err
	}
	result.Excluded = excluded
	result.Stats.ExcludedCount = excluded.Len()
	result.Stats.ExcludeTime = time.Since(start)
	result.CacheInfo.ExclusionsHit = hit

	// Stage 3: Build
	start = time.Now()
	result.Graph = r.Build(ctx, res.Tags, excluded)
	result.Stats.BuildTime = time.Since(start)
	result.Stats.NodeCount = len(result.Graph.Nodes)
	result.Stats.EdgeCount = len(result.Graph.Edges)
	result.Stats.DanglingEdges = len(result.Graph.DanglingEdges())

	// Stage 4: Render
	if opts.NeedsPanelFlag() {
		result.Panel, result.PanelErr = r.PanelFlag(ctx, opts.PluginID)
		if result.PanelErr != nil {
			r.Logger.Warn("plugin configuration unavailable, configure panel disabled", "error", result.PanelErr)
		}
	}
	start = time.Now()
	network, artifacts, err := r.Render(ctx, result.Graph, opts, r.panelEnabled(opts, result.Panel))
	if err != nil {
		return nil, err
	}
	result.Network = network
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchTags runs the primary fetch.
func (r *Runner) FetchTags(ctx context.Context, filter *tags.TagFilter) (*tags.Result, error) {
	res, _, err := r.FetchTagsWithCacheInfo(ctx, filter)
	return res, err
}

// FetchTagsWithCacheInfo runs the primary fetch and reports cache hits.
func (r *Runner) FetchTagsWithCacheInfo(ctx context.Context, filter *tags.TagFilter) (*tags.Result, bool, error) {
	return r.fetch(ctx, PurposeTags, filter)
}

func (r *Runner) fetch(ctx context.Context, purpose string, filter *tags.TagFilter) (*tags.Result, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, purpose)
	start := time.Now()

	res, hit, err := r.Tags.FindTagsWithCacheInfo(ctx, filter)
	count := 0
	if res != nil {
		count = len(res.Tags)
	}
	err = wrapFetchError(err, purpose)
	hooks.OnFetchComplete(ctx, purpose, count, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return res, hit, nil
}

// ResolveExclusions builds the exclusion set for primary.
func (r *Runner) ResolveExclusions(ctx context.Context, primary []tags.Tag, opts Options) (graph.ExclusionSet, error) {
	set, _, err := r.ResolveExclusionsWithCacheInfo(ctx, primary, opts)
	return set, err
}

// ResolveExclusionsWithCacheInfo builds the exclusion set: ids matched by
// the exclusion filter, explicit ids, and ids of primary tags whose names
// match one of the glob patterns. The exclusion filter is only fetched
// when set.
func (r *Runner) ResolveExclusionsWithCacheInfo(ctx context.Context, primary []tags.Tag, opts Options) (graph.ExclusionSet, bool, error) {
	if err := opts.ValidateForExclusions(); err != nil {
		return nil, false, err
	}
	set := graph.NewExclusionSet(opts.ExcludeIDs...)

	var hit bool
	if opts.ExcludeFilter != nil {
		res, h, err := r.fetch(ctx, PurposeExclusions, opts.ExcludeFilter)
		if err != nil {
			return nil, false, err
		}
		hit = h
		set.Add(tags.IDs(res.Tags)...)
		r.Logger.Debug("exclusion filter matched", "count", len(res.Tags), "cached", hit)
	}

	if len(opts.ExcludeNames) > 0 {
		for _, t := range primary {
			if matchAny(opts.ExcludeNames, t.Name) {
				set.Add(t.ID)
			}
		}
	}

	if set.Len() > 0 {
		r.Logger.Debug("resolved exclusions", "count", set.Len())
	}
	return set, hit, nil
}

// matchAny reports whether name matches one of the patterns. Patterns are
// validated up front, so Match errors cannot occur here.
func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Build maps ts to a graph.
func (r *Runner) Build(ctx context.Context, ts []tags.Tag, excluded graph.ExclusionSet) graph.Graph {
	g := graph.Build(ts, excluded)
	observability.Pipeline().OnBuildComplete(ctx, len(g.Nodes), len(g.Edges), excluded.Len())
	r.Logger.Debug("built graph", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g
}

// PanelFlag reads the configure panel flag of pluginID.
func (r *Runner) PanelFlag(ctx context.Context, pluginID string) (plugin.Flag, error) {
	return r.Plugins.OptionsFlag(ctx, pluginID)
}

func (r *Runner) panelEnabled(opts Options, flag plugin.Flag) bool {
	if opts.ConfigurePanel != nil {
		return *opts.ConfigurePanel
	}
	return flag.Enabled()
}

// wrapFetchError maps transport errors to coded errors.
func wrapFetchError(err error, purpose string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.GetCode(err) != "" {
		return err
	}
	var re *graphql.ResponseError
	switch {
	case stderrors.As(err, &re):
		return errors.Wrap(errors.ErrCodeGraphQL, err, "fetch %s", purpose)
	case stderrors.Is(err, graphql.ErrMalformedResponse):
		return errors.Wrap(errors.ErrCodeMalformedResponse, err, "fetch %s", purpose)
	case stderrors.Is(err, graphql.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", purpose)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "fetch %s", purpose)
	}
}

// noTagsError words the empty result after the filter that produced it.
func noTagsError(filter *tags.TagFilter) error {
	if filter == nil {
		return errors.New(errors.ErrCodeNoTags, "no tags with parents or children found")
	}
	return errors.New(errors.ErrCodeNoTags, "no tags matched the filter")
}
