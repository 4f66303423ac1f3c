package vis

import "strconv"

// DefaultHeight is the canvas height in pixels when none is configured.
const DefaultHeight = 1080

// Options mirrors the subset of vis-network options taggraph sets.
type Options struct {
	AutoResize bool        `json:"autoResize"`
	Height     string      `json:"height"`
	Width      string      `json:"width"`
	Configure  Configure   `json:"configure"`
	Nodes      NodeOptions `json:"nodes"`
	Edges      EdgeOptions `json:"edges"`
	Layout     Layout      `json:"layout"`
}

// Configure toggles the interactive options panel.
type Configure struct {
	Enabled bool `json:"enabled"`
}

type NodeOptions struct {
	Color NodeColor `json:"color"`
	Font  Font      `json:"font"`
}

type NodeColor struct {
	Border     string    `json:"border"`
	Background string    `json:"background"`
	Highlight  Highlight `json:"highlight"`
}

type Highlight struct {
	Border     string `json:"border"`
	Background string `json:"background"`
}

type Font struct {
	Color string `json:"color"`
}

type EdgeOptions struct {
	Color string `json:"color"`
}

type Layout struct {
	ImprovedLayout bool `json:"improvedLayout"`
}

// DefaultOptions returns the dark theme used for tag graphs.
// height is in pixels; values <= 0 select DefaultHeight. configure enables
// the options panel.
func DefaultOptions(height int, configure bool) Options {
	if height <= 0 {
		height = DefaultHeight
	}
	return Options{
		AutoResize: true,
		Height:     strconv.Itoa(height) + "px",
		Width:      "100%",
		Configure:  Configure{Enabled: configure},
		Nodes: NodeOptions{
			Color: NodeColor{
				Border:     "#adb5bd",
				Background: "#394b59",
				Highlight: Highlight{
					Border:     "#137cbd",
					Background: "#FFFFFF",
				},
			},
			Font: Font{Color: "white"},
		},
		Edges: EdgeOptions{Color: "#FFFFFF"},
		// improvedLayout is too slow for hierarchies with hundreds of tags.
		Layout: Layout{ImprovedLayout: false},
	}
}
