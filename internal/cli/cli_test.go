package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/taggraph/internal/config"
	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/observability"
	"github.com/matzehuels/taggraph/pkg/pipeline"
)

const findTagsBody = `{"data":{"findTags":{"count":3,"tags":[
	{"id":"1","name":"Genre","image_path":"/tag/1/image","scene_count":9,"parents":[],"children":[{"id":"2"},{"id":"3"}]},
	{"id":"2","name":"Comedy","image_path":"/tag/2/image","scene_count":4,"parents":[{"id":"1"}],"children":[]},
	{"id":"3","name":"Meta: Drama","image_path":"/tag/3/image","scene_count":5,"parents":[{"id":"1"}],"children":[]}
]}}}`

// gqlServer answers findTags with tagsBody and configuration with a
// tagGraph plugin whose options flag is on.
func gqlServer(t *testing.T, tagsBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(req.Query, "findTags"):
			io.WriteString(w, tagsBody)
		case strings.Contains(req.Query, "configuration"):
			io.WriteString(w, `{"data":{"configuration":{"plugins":{"tagGraph":{"options":"yes","depth":2}}}}}`)
		default:
			http.Error(w, "unknown query", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv isolates config and cache directories.
func testEnv(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv(config.EnvEndpoint, "")
	t.Setenv(config.EnvAPIKey, "")
	return configHome, cacheHome
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	c.Err = io.Discard
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)

	out, err := runCLI(t, "fetch", "--endpoint", srv.URL+"/graphql")
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Count int `json:"count"`
		Tags  []struct {
			ID string `json:"id"`
		} `json:"tags"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Count != 3 || len(res.Tags) != 3 {
		t.Errorf("result = %+v", res)
	}
}

func TestFetchCommandWithFilterFile(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)

	dir := t.TempDir()
	filter := filepath.Join(dir, "filter.yaml")
	if err := os.WriteFile(filter, []byte("name:\n  value: Genre\n  modifier: EQUALS\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "tags.json")

	out, err := runCLI(t, "fetch", "--endpoint", srv.URL+"/graphql", "--filter", filter, "-o", output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, output) {
		t.Errorf("output should name the file: %q", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Error(err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("name:\n  value: Genre\n  modifier: SOUNDS_LIKE\n"), 0o644)
	if _, err := runCLI(t, "fetch", "--endpoint", srv.URL+"/graphql", "--filter", bad); err == nil {
		t.Error("invalid modifier should fail")
	}
}

func TestDrawCommand(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)
	base := filepath.Join(t.TempDir(), "out", "tags")

	out, err := runCLI(t, "draw", "--endpoint", srv.URL+"/graphql",
		"-f", "html,json,dot", "-o", base, "--exclude-name", "Meta: *")
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".html", ".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
	}
	if !strings.Contains(out, "1 excluded") {
		t.Errorf("stats should report the exclusion: %q", out)
	}

	g, err := graph.ReadGraphFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if got := g.NodeIDs(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("nodes = %v", got)
	}
	// the edge into the excluded tag stays
	if len(g.Edges) != 2 {
		t.Errorf("edges = %v", g.Edges)
	}

	page, _ := os.ReadFile(base + ".html")
	if !strings.Contains(string(page), `"configure":{"enabled":true`) {
		t.Error("plugin flag \"yes\" should enable the configure panel")
	}
}

// comedyRemoved is findTagsBody after "Comedy" was deleted on the server.
const comedyRemoved = `{"data":{"findTags":{"count":2,"tags":[
	{"id":"1","name":"Genre","image_path":"/tag/1/image","scene_count":9,"parents":[],"children":[{"id":"3"}]},
	{"id":"3","name":"Meta: Drama","image_path":"/tag/3/image","scene_count":5,"parents":[{"id":"1"}],"children":[]}
]}}}`

// editableServer serves whatever body holds and counts findTags queries.
func editableServer(t *testing.T, body *atomic.Value, queries *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(raw), "findTags") {
			queries.Add(1)
			io.WriteString(w, body.Load().(string))
			return
		}
		io.WriteString(w, `{"data":{"configuration":{"plugins":{}}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDrawCommandSeesServerEdits(t *testing.T) {
	testEnv(t)
	var body atomic.Value
	var queries atomic.Int32
	body.Store(findTagsBody)
	srv := editableServer(t, &body, &queries)
	output := filepath.Join(t.TempDir(), "graph.json")
	args := []string{"draw", "--endpoint", srv.URL + "/graphql", "-f", "json", "-o", output}

	if _, err := runCLI(t, args...); err != nil {
		t.Fatal(err)
	}
	body.Store(comedyRemoved)
	if _, err := runCLI(t, args...); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(output)
	if strings.Contains(string(data), "Comedy") {
		t.Error("second draw still shows a tag removed on the server")
	}
	if n := queries.Load(); n != 2 {
		t.Errorf("findTags queried %d times, want once per draw", n)
	}
}

func TestDrawCommandCacheOptIn(t *testing.T) {
	testEnv(t)
	var body atomic.Value
	var queries atomic.Int32
	body.Store(findTagsBody)
	srv := editableServer(t, &body, &queries)
	output := filepath.Join(t.TempDir(), "graph.json")
	args := []string{"draw", "--cache", "--endpoint", srv.URL + "/graphql", "-f", "json", "-o", output}

	for range 2 {
		if _, err := runCLI(t, args...); err != nil {
			t.Fatal(err)
		}
	}
	if n := queries.Load(); n != 1 {
		t.Errorf("findTags queried %d times with --cache, want 1", n)
	}
	if _, err := runCLI(t, "draw", "--cache", "--no-cache", "--endpoint", srv.URL+"/graphql", "-o", output); err == nil {
		t.Error("--cache and --no-cache together should be rejected")
	}
}

func TestDrawCommandConfigureOverride(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)
	output := filepath.Join(t.TempDir(), "page.html")

	if _, err := runCLI(t, "draw", "--endpoint", srv.URL+"/graphql", "-o", output, "--configure=false"); err != nil {
		t.Fatal(err)
	}
	page, _ := os.ReadFile(output)
	if !strings.Contains(string(page), `"configure":{"enabled":false`) {
		t.Error("--configure=false should disable the panel")
	}
}

func TestDrawCommandNoTags(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, `{"data":{"findTags":{"count":0,"tags":[]}}}`)
	dir := t.TempDir()
	output := filepath.Join(dir, "empty.html")

	out, err := runCLI(t, "draw", "--endpoint", srv.URL+"/graphql", "-o", output)
	if err != nil {
		t.Fatalf("empty result should only warn: %v", err)
	}
	if !strings.Contains(out, "no tags") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("nothing should be written for an empty result")
	}
}

func TestDrawCommandErrors(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)
	ep := srv.URL + "/graphql"

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"draw", "--endpoint", ep, "-f", "gif"}},
		{"pattern", []string{"draw", "--endpoint", ep, "--exclude-name", "[a-"}},
		{"rank dir", []string{"draw", "--endpoint", ep, "--rank-dir", "up"}},
		{"endpoint", []string{"draw", "--endpoint", "localhost:9999"}},
		{"missing filter", []string{"draw", "--endpoint", ep, "--filter", "/nonexistent.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDrawUsesConfigExclusions(t *testing.T) {
	configHome, _ := testEnv(t)
	srv := gqlServer(t, findTagsBody)

	dir := filepath.Join(configHome, appName)
	os.MkdirAll(dir, 0o755)
	cfg := "endpoint = \"" + srv.URL + "/graphql\"\n\n[exclude]\nids = [\"1\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(t.TempDir(), "g.json")
	if _, err := runCLI(t, "draw", "-f", "json", "-o", output); err != nil {
		t.Fatal(err)
	}
	g, err := graph.ReadGraphFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.NodeIDs(); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("nodes = %v", got)
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges from excluded tag 1 should be dropped: %v", g.Edges)
	}
}

func TestPluginCommand(t *testing.T) {
	testEnv(t)
	srv := gqlServer(t, findTagsBody)

	out, err := runCLI(t, "plugin", "--endpoint", srv.URL+"/graphql")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"tagGraph", "on", "depth, options"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}

	out, err = runCLI(t, "plugin", "--endpoint", srv.URL+"/graphql", "--id", "other")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "unset") {
		t.Errorf("unknown plugin should be unset: %q", out)
	}
}

func TestCacheCommands(t *testing.T) {
	_, cacheHome := testEnv(t)
	srv := gqlServer(t, findTagsBody)

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(cacheHome, appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	// populate the cache
	if _, err := runCLI(t, "fetch", "--cache", "--endpoint", srv.URL+"/graphql"); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "cache", "clear", "--expired")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No expired entries") {
		t.Errorf("clear --expired output = %q", out)
	}
	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear output = %q", out)
	}
	out, _ = runCLI(t, "cache", "clear")
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("second clear = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	testEnv(t)
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "taggraph") {
		t.Error("completion script should mention the command")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestSetLogLevelRegistersHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogInfo)
	if _, ok := observability.Pipeline().(logHooks); ok {
		t.Error("info level should keep the no-op hooks")
	}
	c.SetLogLevel(LogDebug)
	if _, ok := observability.Pipeline().(logHooks); !ok {
		t.Error("debug level should install logging hooks")
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		output  string
		want    map[string]string
	}{
		{"default", []string{"html"}, "", map[string]string{"html": "taggraph.html"}},
		{"single explicit", []string{"svg"}, "out/graph.svg", map[string]string{"svg": "out/graph.svg"}},
		{"single no ext", []string{"json"}, "graph", map[string]string{"json": "graph"}},
		{"multi base", []string{"html", "vis"}, "out/g", map[string]string{"html": "out/g.html", "vis": "out/g.vis.json"}},
		{"multi strips ext", []string{"json", "dot"}, "g.vis.json", map[string]string{"json": "g.json", "dot": "g.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.formats, tt.output); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"html"}},
		{"json", []string{"json"}},
		{"html, dot,,svg", []string{"html", "dot", "svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExclusionFlagsApply(t *testing.T) {
	dir := t.TempDir()
	cfgFilter := filepath.Join(dir, "cfg.json")
	flagFilter := filepath.Join(dir, "flag.toml")
	os.WriteFile(cfgFilter, []byte(`{"name":{"value":"Meta","modifier":"INCLUDES"}}`), 0o644)
	os.WriteFile(flagFilter, []byte("[scene_count]\nvalue = 0\nmodifier = \"EQUALS\"\n"), 0o644)

	cfg := config.Default()
	cfg.Exclude = config.ExcludeConfig{IDs: []string{"1"}, Names: []string{"A*"}, FilterFile: cfgFilter}

	var opts pipeline.Options
	f := exclusionFlags{ids: []string{"2"}, names: []string{"B*"}}
	if err := f.apply(cfg, &opts); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(opts.ExcludeIDs, []string{"1", "2"}) || !reflect.DeepEqual(opts.ExcludeNames, []string{"A*", "B*"}) {
		t.Errorf("merged = %v %v", opts.ExcludeIDs, opts.ExcludeNames)
	}
	if opts.ExcludeFilter == nil || opts.ExcludeFilter.Name == nil {
		t.Fatalf("config filter not loaded: %+v", opts.ExcludeFilter)
	}

	f.filter = flagFilter
	if err := f.apply(cfg, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.ExcludeFilter.SceneCount == nil || opts.ExcludeFilter.Name != nil {
		t.Errorf("flag filter should replace the config filter: %+v", opts.ExcludeFilter)
	}
	if len(cfg.Exclude.IDs) != 1 {
		t.Error("config slices must not be modified")
	}
}
