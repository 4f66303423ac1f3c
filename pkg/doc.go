// Package pkg provides the libraries behind taggraph, which draws the
// parent/child hierarchy of media-server tags as a network graph.
//
// # Overview
//
// Tags are fetched over GraphQL, mapped to nodes and edges with an
// exclusion set applied, and rendered for a browser widget or Graphviz:
//
//	GraphQL server
//	     ↓
//	[tags] package (findTags query, filters)
//	     ↓
//	[graph] package (nodes, edges, exclusions)
//	     ↓
//	[render/vis], [render/nodelink] (HTML page, DOT, SVG)
//	     ↓
//	HTML/JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/taggraph/pkg/graphql"
//	    "github.com/matzehuels/taggraph/pkg/pipeline"
//	)
//
//	client, _ := graphql.NewClient(graphql.Config{Endpoint: "http://localhost:9999/graphql"})
//	runner := pipeline.NewRunner(client, nil)
//	res, err := runner.Draw(context.Background(), pipeline.Options{
//	    ExcludeNames: []string{"Meta: *"},
//	    Formats:      []string{"html", "json"},
//	})
//
// # Main Packages
//
// [graphql] - POST-with-JSON transport: typed envelope, decode validation,
// retries for transient failures, response caching.
//
// [tags] - The findTags query, tag records, and the filter schema loaded
// from JSON, YAML or TOML.
//
// [graph] - Builds {nodes, edges} from tags and an exclusion set. Edges are
// dropped only when their source tag is excluded.
//
// [plugin] - Reads per-plugin configuration and its tri-state options flag.
//
// [render/vis] - vis-network options, payload and standalone HTML page.
//
// [render/nodelink] - Graphviz DOT and SVG via go-graphviz.
//
// [pipeline] - Orchestration (fetch → exclude → build → render).
//
// ## Infrastructure
//
// [cache] - Response caches: file, Redis, MongoDB, and a no-op cache.
//
// [httputil] - Retry helpers shared by the transport.
//
// [observability] - Hook registry for fetch, cache and HTTP events.
//
// [errors] - Coded errors and input validation.
//
// [buildinfo] - Version information.
package pkg
