// Package cli implements the taggraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/internal/config"
	"github.com/matzehuels/taggraph/pkg/buildinfo"
	"github.com/matzehuels/taggraph/pkg/cache"
	"github.com/matzehuels/taggraph/pkg/graphql"
	"github.com/matzehuels/taggraph/pkg/observability"
	"github.com/matzehuels/taggraph/pkg/pipeline"
	"github.com/matzehuels/taggraph/pkg/tags"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display and default output names.
	appName = "taggraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output (JSON, paths, status lines).
	Out io.Writer
	// Err receives the spinner.
	Err io.Writer

	configPath string
	endpoint   string
	apiKey     string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
	}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks log every fetch, cache lookup and HTTP round trip.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := newLogHooks(c.Logger)
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
		observability.SetHTTPHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Taggraph draws the tag hierarchy of a media server as a network graph",
		Long:         `Taggraph queries tags over GraphQL and draws their parent/child hierarchy as an interactive vis-network page, Graphviz diagram or JSON graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taggraph/config.toml)")
	pf.StringVar(&c.endpoint, "endpoint", "", "GraphQL endpoint (overrides config and "+config.EnvEndpoint+")")
	pf.StringVar(&c.apiKey, "api-key", "", "API key sent in the ApiKey header (overrides config and "+config.EnvAPIKey+")")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pluginCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadConfig reads the config file and environment, then applies the
// global flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.endpoint != "" {
		cfg.Endpoint = c.endpoint
	}
	if c.apiKey != "" {
		cfg.APIKey = c.apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// cacheFlags are shared by commands that query the server.
// Caching is off unless the config selects a backend or --cache is given,
// so every draw sees the server's current tags by default.
type cacheFlags struct {
	useCache bool
	noCache  bool
	refresh  bool
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.useCache, "cache", false, "cache responses in the file cache when the config selects no backend")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached responses but store fresh ones")
	cmd.MarkFlagsMutuallyExclusive("cache", "no-cache")
}

// session bundles what a command needs to query the server.
type session struct {
	cfg    *config.Config
	cache  cache.Cache
	client *graphql.Client
	runner *pipeline.Runner
}

func (s *session) Close() error {
	return s.cache.Close()
}

// newSession loads the configuration and builds the cache, client and
// runner. Callers must Close the session.
func (c *CLI) newSession(ctx context.Context, flags cacheFlags) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if flags.useCache && cfg.Cache.Backend == cache.BackendNone {
		cfg.Cache.Backend = cache.BackendFile
	}
	cc, err := c.newCache(ctx, cfg, flags.noCache)
	if err != nil {
		return nil, err
	}
	client, err := graphql.NewClient(graphql.Config{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout.Duration,
		Retries:  cfg.Retries,
		Cache:    cc,
		Keyer:    cache.CredentialKeyer(nil, cfg.APIKey),
		CacheTTL: cfg.Cache.TTL.Duration,
		Refresh:  flags.refresh,
		Logger:   c.Logger,
	})
	if err != nil {
		_ = cc.Close()
		return nil, err
	}
	return &session{
		cfg:    cfg,
		cache:  cc,
		client: client,
		runner: pipeline.NewRunner(client, c.Logger),
	}, nil
}

// newCache opens the configured backend. A file cache that cannot be
// created degrades to no caching, as does --no-cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache directory unavailable, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		if opts.Backend == "" || opts.Backend == cache.BackendFile {
			c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	c.Logger.Debug("opened cache", "backend", backendName(opts.Backend))
	return cc, nil
}

// spinner starts a spinner on Err. Callers must Stop it.
func (c *CLI) spinner(ctx context.Context, message string) *Spinner {
	return startSpinner(ctx, c.Err, message)
}

func backendName(b string) string {
	if b == "" {
		return cache.BackendFile
	}
	return b
}

// =============================================================================
// Options Helpers
// =============================================================================

// exclusionFlags are shared by draw and serve.
type exclusionFlags struct {
	filter string
	ids    []string
	names  []string
}

func (f *exclusionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "exclude-filter", "", "filter file (json, yaml, toml) whose matching tags are excluded")
	cmd.Flags().StringSliceVar(&f.ids, "exclude-id", nil, "tag id to exclude (repeatable)")
	cmd.Flags().StringSliceVar(&f.names, "exclude-name", nil, "glob over tag names to exclude, e.g. 'Meta: *' (repeatable)")
}

// apply merges config and flag exclusions into opts. A flag filter file
// replaces the configured one.
func (f *exclusionFlags) apply(cfg *config.Config, opts *pipeline.Options) error {
	opts.ExcludeIDs = append(append([]string(nil), cfg.Exclude.IDs...), f.ids...)
	opts.ExcludeNames = append(append([]string(nil), cfg.Exclude.Names...), f.names...)

	path := cfg.Exclude.FilterFile
	if f.filter != "" {
		path = f.filter
	}
	if path == "" {
		return nil
	}
	filter, err := tags.LoadFilterFile(path)
	if err != nil {
		return err
	}
	opts.ExcludeFilter = filter
	return nil
}

// loadFilter reads the primary filter file; empty selects the default
// hierarchy filter.
func loadFilter(path string) (*tags.TagFilter, error) {
	if path == "" {
		return nil, nil
	}
	return tags.LoadFilterFile(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
