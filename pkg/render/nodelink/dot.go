package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taggraph/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the tag id and scene count below each name.
	Detailed bool
	// RankDir overrides the layout direction (TB, LR, BT, RL).
	RankDir string
}

// Palette shared with the vis renderer.
const (
	colorBorder     = "#adb5bd"
	colorBackground = "#394b59"
	colorFont       = "white"
)

// ToDOT converts g to Graphviz DOT.
func ToDOT(g graph.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph tags {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=ellipse, style=filled, fillcolor=%q, color=%q, fontcolor=%q, fontsize=18];\n",
		colorBackground, colorBorder, colorFont)
	fmt.Fprintf(&buf, "  edge [color=%q];\n", colorBorder)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = struct{}{}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	placeholders := make(map[string]struct{})
	for _, e := range g.DanglingEdges() {
		if _, done := placeholders[e.To]; done {
			continue
		}
		placeholders[e.To] = struct{}{}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.To, strings.Join(placeholderAttrs(e.To), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if _, ok := known[e.To]; ok {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nid: %s\nscenes: %d", label, n.ID, n.Value)
}

func fmtAttrs(n graph.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.Label != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Label))
	}
	return attrs
}

func placeholderAttrs(id string) []string {
	return []string{
		fmt.Sprintf("label=%q", id),
		"style=\"filled,dashed\"",
		"fillcolor=lightgrey",
		"fontcolor=black",
	}
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// viewBox starts at the origin, so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
