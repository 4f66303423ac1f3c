package cli

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taggraph/internal/server"
	"github.com/matzehuels/taggraph/pkg/buildinfo"
	"github.com/matzehuels/taggraph/pkg/pipeline"
)

// serveCommand serves the drawn graph over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		filter  string
		title   string
		exclude exclusionFlags
		flags   cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tag graph over HTTP",
		Long: `Serve the tag graph over HTTP. Every request draws afresh.

Routes:
  GET /            HTML page
  GET /graph.json  graph nodes and edges
  GET /vis.json    vis-network payload
  GET /graph.dot   Graphviz source
  GET /graph.svg   SVG
  GET /healthz     health check

Query parameters exclude_id and exclude_name add exclusions per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := loadFilter(filter)
			if err != nil {
				return err
			}
			defaults := pipeline.Options{
				Filter:   f,
				Height:   s.cfg.Height,
				Title:    title,
				PluginID: s.cfg.PluginID,
			}
			if err := exclude.apply(s.cfg, &defaults); err != nil {
				return err
			}
			// fail on bad defaults before listening
			check := defaults.Clone()
			if err := check.ValidateAndSetDefaults(); err != nil {
				return err
			}

			srv := server.New(server.Config{
				Runner:   s.runner,
				Defaults: defaults,
				Version:  buildinfo.Version,
				Logger:   c.Logger.WithPrefix("http"),
			})
			printInfo(c.Out, "Serving %s on %s", StyleValue.Render(s.cfg.Endpoint), StyleTitle.Render("http://"+addr))

			err = srv.ListenAndServe(ctx, addr)
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&filter, "filter", "", "tag filter file (json, yaml, toml)")
	cmd.Flags().StringVar(&title, "title", "", "HTML page title")
	exclude.register(cmd)
	flags.register(cmd)

	return cmd
}
