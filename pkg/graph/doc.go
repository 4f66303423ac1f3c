// Package graph turns tag hierarchies into the node/edge format drawn by
// the network widget.
//
// # Building
//
// [Build] walks a tag list once. Tags whose id is in the [ExclusionSet]
// are skipped; for every other tag it emits a [Node] and one [Edge] per
// child:
//
//	g := graph.Build(result.Tags, graph.NewExclusionSet("12", "40"))
//
// Exclusion is checked on the source tag only. An edge to an excluded
// child is still emitted, so the widget may receive edges whose target
// has no node. [Graph.DanglingEdges] lists them.
//
// # Serialization
//
//	{
//	  "nodes": [{"id": "1", "label": "Genre", "image": "...", "value": 12, "shape": "circularImage"}],
//	  "edges": [{"from": "1", "to": "2"}]
//	}
//
// Empty graphs encode as {"nodes": [], "edges": []}.
package graph
