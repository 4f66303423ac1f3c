package graph

import (
	"slices"

	"github.com/matzehuels/taggraph/pkg/tags"
)

// ShapeCircularImage draws a node as its tag image clipped to a circle.
const ShapeCircularImage = "circularImage"

// Graph is the node/edge structure consumed by the network widget.
// Both slices are always non-nil so that JSON output carries [] instead
// of null.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one included tag. Field names follow the widget's node options.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"image"`
	Value int    `json:"value"` // scene count, used as size hint
	Shape string `json:"shape"`
}

// Edge points from a parent tag to one of its children.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NodeIDs returns the node ids in order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// DanglingEdges returns edges whose target is not a node of g. Such edges
// appear when a child tag was excluded or not matched by the filter.
func (g Graph) DanglingEdges() []Edge {
	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = struct{}{}
	}
	var out []Edge
	for _, e := range g.Edges {
		if _, ok := known[e.To]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// ExclusionSet is a set of tag ids to leave out of a graph.
// The zero value is an empty set ready for reads; use NewExclusionSet
// before calling Add.
type ExclusionSet map[string]struct{}

// NewExclusionSet returns a set holding ids.
func NewExclusionSet(ids ...string) ExclusionSet {
	s := make(ExclusionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// ExclusionSetFromTags returns the set of ids of ts.
func ExclusionSetFromTags(ts []tags.Tag) ExclusionSet {
	return NewExclusionSet(tags.IDs(ts)...)
}

// Add inserts ids.
func (s ExclusionSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is excluded.
func (s ExclusionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of excluded ids.
func (s ExclusionSet) Len() int { return len(s) }

// Union returns a new set with the members of s and other.
func (s ExclusionSet) Union(other ExclusionSet) ExclusionSet {
	out := make(ExclusionSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the members sorted.
func (s ExclusionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
