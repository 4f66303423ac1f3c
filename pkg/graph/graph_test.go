package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/taggraph/pkg/tags"
)

func tag(id, name string, children ...string) tags.Tag {
	t := tags.Tag{ID: id, Name: name, ImagePath: "/tag/" + id + "/image", SceneCount: len(id)}
	for _, c := range children {
		t.Children = append(t.Children, tags.Ref{ID: c})
	}
	return t
}

func TestBuild(t *testing.T) {
	two := []tags.Tag{tag("1", "A", "2"), tag("2", "B")}

	tests := []struct {
		name      string
		tags      []tags.Tag
		excluded  ExclusionSet
		wantNodes []string
		wantEdges []Edge
	}{
		{"no exclusions", two, nil, []string{"1", "2"}, []Edge{{"1", "2"}}},
		{"exclude parent", two, NewExclusionSet("1"), []string{"2"}, []Edge{}},
		{"exclude child keeps edge", two, NewExclusionSet("2"), []string{"1"}, []Edge{{"1", "2"}}},
		{"empty input", nil, nil, []string{}, []Edge{}},
		{"exclude all", two, NewExclusionSet("1", "2"), []string{}, []Edge{}},
		{
			"order preserved",
			[]tags.Tag{tag("9", "Z", "1", "5"), tag("1", "A"), tag("5", "M", "1")},
			nil,
			[]string{"9", "1", "5"},
			[]Edge{{"9", "1"}, {"9", "5"}, {"5", "1"}},
		},
		{
			"child outside input",
			[]tags.Tag{tag("1", "A", "77")},
			nil,
			[]string{"1"},
			[]Edge{{"1", "77"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.tags, tt.excluded)
			if got := g.NodeIDs(); !reflect.DeepEqual(got, tt.wantNodes) {
				t.Errorf("nodes = %v, want %v", got, tt.wantNodes)
			}
			if !reflect.DeepEqual(g.Edges, tt.wantEdges) {
				t.Errorf("edges = %v, want %v", g.Edges, tt.wantEdges)
			}
		})
	}
}

func TestBuildNodeFields(t *testing.T) {
	g := Build([]tags.Tag{{ID: "3", Name: "Outdoor", ImagePath: "/tag/3/image", SceneCount: 42}}, nil)
	want := Node{ID: "3", Label: "Outdoor", Image: "/tag/3/image", Value: 42, Shape: "circularImage"}
	if g.Nodes[0] != want {
		t.Errorf("node = %+v, want %+v", g.Nodes[0], want)
	}
}

func TestBuildEdgeSourcesNeverExcluded(t *testing.T) {
	ts := []tags.Tag{
		tag("1", "A", "2", "3"),
		tag("2", "B", "3"),
		tag("3", "C", "1"),
		tag("4", "D", "2"),
	}
	ex := NewExclusionSet("2", "3")
	g := Build(ts, ex)

	for _, e := range g.Edges {
		if ex.Has(e.From) {
			t.Errorf("edge %v starts at excluded tag", e)
		}
	}
	if len(g.Nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(g.Nodes))
	}
	// 1->2, 1->3, 4->2
	if len(g.Edges) != 3 {
		t.Errorf("got %d edges, want 3", len(g.Edges))
	}
	if len(g.DanglingEdges()) != 3 {
		t.Errorf("got %d dangling edges, want 3", len(g.DanglingEdges()))
	}
}

func TestEmptyGraphJSON(t *testing.T) {
	data, err := json.Marshal(Build(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("json = %s", data)
	}

	var buf bytes.Buffer
	if err := WriteGraph(Graph{}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"nodes": []`) || !strings.Contains(buf.String(), `"edges": []`) {
		t.Errorf("zero Graph should write empty arrays, got %s", buf.String())
	}
}

func TestGraphFileIO(t *testing.T) {
	g := Build([]tags.Tag{tag("1", "A", "2"), tag("2", "B")}, nil)
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("read %+v, want %+v", got, g)
	}
}

func TestReadGraphErrors(t *testing.T) {
	for name, in := range map[string]string{
		"not json": "nodes",
		"no id":    `{"nodes":[{"label":"x"}],"edges":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadGraph(strings.NewReader(in)); err == nil {
				t.Error("expected error")
			}
		})
	}

	g, err := ReadGraph(strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if g.Nodes == nil || g.Edges == nil {
		t.Error("ReadGraph should normalize missing arrays")
	}
}

func TestExclusionSet(t *testing.T) {
	var zero ExclusionSet
	if zero.Has("1") || zero.Len() != 0 {
		t.Error("zero set should be empty")
	}

	s := NewExclusionSet("3", "1")
	s.Add("2", "1")
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("IDs = %v", got)
	}

	u := s.Union(ExclusionSetFromTags([]tags.Tag{{ID: "9"}}))
	if !u.Has("9") || !u.Has("1") || u.Len() != 4 {
		t.Errorf("Union = %v", u.IDs())
	}
	if s.Has("9") {
		t.Error("Union must not modify the receiver")
	}
	if zero.Union(s).Len() != 3 {
		t.Error("Union with zero set")
	}
}
