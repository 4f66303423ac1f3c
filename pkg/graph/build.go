package graph

import "github.com/matzehuels/taggraph/pkg/tags"

// Build maps tags to a Graph in a single pass.
//
// Every tag not in excluded becomes a node. Every child of such a tag
// becomes an edge, whether or not the child itself is excluded. Output
// order follows input order.
func Build(ts []tags.Tag, excluded ExclusionSet) Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(ts)),
		Edges: []Edge{},
	}
	for _, t := range ts {
		if excluded.Has(t.ID) {
			continue
		}
		g.Nodes = append(g.Nodes, Node{
			ID:    t.ID,
			Label: t.Name,
			Image: t.ImagePath,
			Value: t.SceneCount,
			Shape: ShapeCircularImage,
		})
		for _, c := range t.Children {
			g.Edges = append(g.Edges, Edge{From: t.ID, To: c.ID})
		}
	}
	return g
}
