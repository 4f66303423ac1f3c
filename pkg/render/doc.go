// Package render holds the output renderers for tag graphs.
//
//   - [vis]: the vis-network HTML page and its {data, options} payload
//   - [nodelink]: Graphviz DOT and SVG via go-graphviz
//
// [ToPDF] and [ToPNG] convert nodelink SVG output with the external
// rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [vis]: github.com/matzehuels/taggraph/pkg/render/vis
// [nodelink]: github.com/matzehuels/taggraph/pkg/render/nodelink
package render
