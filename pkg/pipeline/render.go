package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/observability"
	"github.com/matzehuels/taggraph/pkg/render"
	"github.com/matzehuels/taggraph/pkg/render/nodelink"
	"github.com/matzehuels/taggraph/pkg/render/vis"
)

// Render produces artifacts for every requested format. The returned
// network is the widget value behind the html and vis formats.
func (r *Runner) Render(ctx context.Context, g graph.Graph, opts Options, configure bool) (*vis.Network, map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	network, artifacts, err := renderFormats(ctx, g, opts, configure)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return network, artifacts, nil
}

func renderFormats(ctx context.Context, g graph.Graph, opts Options, configure bool) (*vis.Network, map[string][]byte, error) {
	network := vis.New(g, vis.DefaultOptions(opts.Height, configure))
	artifacts := make(map[string][]byte, len(opts.Formats))

	// svg feeds png and pdf; render it at most once.
	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, opts.NodelinkOptions()))
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatHTML:
			data, err = network.HTML(vis.PageOptions{
				Title:     opts.Title,
				ScriptURL: opts.ScriptURL,
				Summary:   summary(g),
			})
		case FormatVis:
			var buf bytes.Buffer
			err = network.WriteJSON(&buf)
			data = buf.Bytes()
		case FormatJSON:
			data, err = graph.MarshalGraph(g)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, opts.NodelinkOptions()))
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			return nil, nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return network, artifacts, nil
}

func summary(g graph.Graph) string {
	return fmt.Sprintf("%d tags, %d edges", len(g.Nodes), len(g.Edges))
}
