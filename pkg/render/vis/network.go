package vis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/matzehuels/taggraph/pkg/graph"
)

// DefaultContainerID is the id of the element the network is drawn into.
const DefaultContainerID = "taggraph"

// DefaultScriptURL loads the standalone vis-network bundle.
const DefaultScriptURL = "https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"

//go:embed page.html.tmpl
var pageSource string

var pageTmpl = template.Must(template.New("page").Parse(pageSource))

// Network is a drawable network: container, data and options.
// It is a plain value owned by the caller.
type Network struct {
	ContainerID string
	Data        graph.Graph
	Options     Options
}

// New returns a Network for g drawn into DefaultContainerID.
func New(g graph.Graph, opts Options) *Network {
	return &Network{ContainerID: DefaultContainerID, Data: g, Options: opts}
}

// Payload is the JSON handed to the widget.
type Payload struct {
	Data    graph.Graph `json:"data"`
	Options Options     `json:"options"`
}

// Payload returns the data and options as one value.
func (n *Network) Payload() Payload {
	data := n.Data
	if data.Nodes == nil {
		data.Nodes = []graph.Node{}
	}
	if data.Edges == nil {
		data.Edges = []graph.Edge{}
	}
	return Payload{Data: data, Options: n.Options}
}

// WriteJSON writes the payload as indented JSON.
func (n *Network) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n.Payload())
}

// PageOptions configures WriteHTML.
type PageOptions struct {
	Title     string
	ScriptURL string
	// Summary is shown above the canvas, e.g. the tag count.
	Summary string
}

// WriteHTML writes a standalone page that loads vis-network and draws n.
func (n *Network) WriteHTML(w io.Writer, opts PageOptions) error {
	if opts.Title == "" {
		opts.Title = "Tag Graph"
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	container := n.ContainerID
	if container == "" {
		container = DefaultContainerID
	}

	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		PageOptions
		ContainerID string
		Payload     Payload
	}{opts, container, n.Payload()})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// HTML returns the page as bytes.
func (n *Network) HTML(opts PageOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := n.WriteHTML(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
