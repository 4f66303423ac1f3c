// Package vis prepares tag graphs for the vis-network browser widget.
//
// A [Network] bundles the graph with the widget [Options]. It is returned to
// the caller rather than kept in package state, so several networks can be
// drawn side by side.
//
//	n := vis.New(g, vis.DefaultOptions(1080, flag.Enabled()))
//	err := n.WriteHTML(w, vis.PageOptions{Title: "Tags"})
//
// [Network.WriteJSON] emits the {data, options} payload for callers that
// host the widget themselves.
package vis
