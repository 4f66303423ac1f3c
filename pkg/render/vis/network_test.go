package vis

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/tags"
)

func TestDefaultOptions(t *testing.T) {
	data, err := json.Marshal(DefaultOptions(900, false))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"autoResize":true,"height":"900px","width":"100%","configure":{"enabled":false},` +
		`"nodes":{"color":{"border":"#adb5bd","background":"#394b59","highlight":{"border":"#137cbd","background":"#FFFFFF"}},"font":{"color":"white"}},` +
		`"edges":{"color":"#FFFFFF"},"layout":{"improvedLayout":false}}`
	if string(data) != want {
		t.Errorf("options =\n%s\nwant\n%s", data, want)
	}
}

func TestDefaultOptionsHeightAndConfigure(t *testing.T) {
	tests := []struct {
		height    int
		configure bool
		wantH     string
	}{
		{0, false, "1080px"},
		{-5, true, "1080px"},
		{720, true, "720px"},
	}
	for _, tt := range tests {
		o := DefaultOptions(tt.height, tt.configure)
		if o.Height != tt.wantH {
			t.Errorf("DefaultOptions(%d).Height = %s, want %s", tt.height, o.Height, tt.wantH)
		}
		if o.Configure.Enabled != tt.configure {
			t.Errorf("Configure.Enabled = %v, want %v", o.Configure.Enabled, tt.configure)
		}
	}
}

func sample() graph.Graph {
	return graph.Build([]tags.Tag{
		{ID: "1", Name: "Genre", ImagePath: "http://localhost:9999/tag/1/image", Children: []tags.Ref{{ID: "2"}}},
		{ID: "2", Name: "</script><b>x</b>"},
	}, nil)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(sample(), DefaultOptions(0, false)).WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var p struct {
		Data struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		} `json:"data"`
		Options map[string]any `json:"options"`
	}
	if err := json.Unmarshal(buf.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if len(p.Data.Nodes) != 2 || len(p.Data.Edges) != 1 {
		t.Errorf("payload = %+v", p.Data)
	}
	if p.Data.Nodes[0]["shape"] != "circularImage" {
		t.Errorf("shape = %v", p.Data.Nodes[0]["shape"])
	}
	if p.Options["height"] != "1080px" {
		t.Errorf("height = %v", p.Options["height"])
	}
}

func TestPayloadNeverNull(t *testing.T) {
	n := &Network{Options: DefaultOptions(0, false)}
	data, err := json.Marshal(n.Payload().Data)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("data = %s", data)
	}
}

func TestWriteHTML(t *testing.T) {
	html, err := New(sample(), DefaultOptions(0, true)).HTML(PageOptions{Summary: "2 tags"})
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	for _, want := range []string{
		`<script src="` + DefaultScriptURL + `"></script>`,
		`<div id="taggraph"></div>`,
		`<title>Tag Graph</title>`,
		`<header>2 tags</header>`,
		`new vis.Network(document.getElementById("taggraph")`,
		`"circularImage"`,
		`"enabled":true`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "</script><b>") {
		t.Error("tag name not escaped inside script")
	}
}

func TestWriteHTMLCustom(t *testing.T) {
	n := New(graph.Build(nil, nil), DefaultOptions(0, false))
	n.ContainerID = "graph"
	html, err := n.HTML(PageOptions{Title: "Studio tags", ScriptURL: "/static/vis.js"})
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	for _, want := range []string{`<title>Studio tags</title>`, `src="/static/vis.js"`, `<div id="graph">`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "<header>") {
		t.Error("empty summary should omit header")
	}
}
