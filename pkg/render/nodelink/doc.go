// Package nodelink renders tag graphs as Graphviz node-link diagrams.
//
// [ToDOT] produces DOT source with one node per tag and one arrow per
// parent/child edge, laid out top to bottom with parents above children.
// Edge targets that have no node (excluded or unmatched tags) are drawn as
// dashed grey placeholders labelled with their id.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
// Tag images are not embedded; use the vis renderer for image nodes.
package nodelink
