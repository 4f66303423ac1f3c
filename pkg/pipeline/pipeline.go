// Package pipeline implements the draw flow shared by the CLI and the server.
//
// # Stages
//
//  1. Fetch: query tags matching the primary filter
//  2. Exclude: resolve the exclusion set (exclusion filter, ids, name globs)
//  3. Build: map tags to nodes and edges
//  4. Render: produce artifacts in the requested formats
//
// Fetches run one after the other: the exclusion filter is queried only
// after the primary fetch has returned, and only when one is given.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, logger)
//	result, err := runner.Draw(ctx, pipeline.Options{
//	    ExcludeNames: []string{"Meta*"},
//	    Formats:      []string{"html", "json"},
//	})
//	if errors.Is(err, errors.ErrCodeNoTags) {
//	    // nothing to draw
//	}
//	page := result.Artifacts["html"]
//
// Each stage is also exported so that callers can stop early, e.g. the
// fetch command only runs FetchTags.
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/plugin"
	"github.com/matzehuels/taggraph/pkg/render/nodelink"
	"github.com/matzehuels/taggraph/pkg/render/vis"
	"github.com/matzehuels/taggraph/pkg/tags"
)

// Format names.
const (
	FormatHTML = "html"
	FormatVis  = "vis"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatHTML

// DefaultPNGScale is the resolution multiplier for png output.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatVis:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// FormatExt maps a format to its file extension.
var FormatExt = map[string]string{
	FormatHTML: ".html",
	FormatVis:  ".vis.json",
	FormatJSON: ".json",
	FormatDOT:  ".dot",
	FormatSVG:  ".svg",
	FormatPNG:  ".png",
	FormatPDF:  ".pdf",
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: html, vis, json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a draw.
type Options struct {
	// Fetch options
	Filter *tags.TagFilter `json:"filter,omitempty"` // nil selects tags with parents or children

	// Exclusion options
	ExcludeFilter *tags.TagFilter `json:"exclude_filter,omitempty"`
	ExcludeIDs    []string        `json:"exclude_ids,omitempty"`
	ExcludeNames  []string        `json:"exclude_names,omitempty"` // glob patterns over tag names

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Height    int      `json:"height,omitempty"` // canvas height in px
	Title     string   `json:"title,omitempty"`
	ScriptURL string   `json:"script_url,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // dot/svg labels with id and scene count
	RankDir   string   `json:"rank_dir,omitempty"`
	Scale     float64  `json:"scale,omitempty"` // png only

	// Configure panel. PluginID names the plugin whose options flag is read;
	// ConfigurePanel, when set, skips the lookup.
	PluginID       string `json:"plugin_id,omitempty"`
	ConfigurePanel *bool  `json:"configure_panel,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks every option and fills defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForExclusions(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Clone returns a copy whose slices can be appended to independently and
// which validates again on the next draw.
func (o Options) Clone() Options {
	o.ExcludeIDs = append([]string(nil), o.ExcludeIDs...)
	o.ExcludeNames = append([]string(nil), o.ExcludeNames...)
	o.Formats = append([]string(nil), o.Formats...)
	o.validated = false
	return o
}

// ValidateForFetch validates the primary filter.
func (o *Options) ValidateForFetch() error {
	return o.Filter.Validate()
}

// ValidateForExclusions validates the exclusion filter, ids and patterns.
func (o *Options) ValidateForExclusions() error {
	if err := o.ExcludeFilter.Validate(); err != nil {
		return err
	}
	for _, id := range o.ExcludeIDs {
		if err := errors.ValidateTagID(id); err != nil {
			return err
		}
	}
	for _, p := range o.ExcludeNames {
		if err := errors.ValidatePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults fills render defaults.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Height <= 0 {
		o.Height = vis.DefaultHeight
	}
	if o.Scale <= 0 {
		o.Scale = DefaultPNGScale
	}
	if o.PluginID == "" && o.ConfigurePanel == nil {
		o.PluginID = plugin.DefaultID
	}
}

// ValidateForRender fills defaults and validates render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	switch o.RankDir {
	case "", "TB", "LR", "BT", "RL":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid rank direction: %q (must be one of: TB, LR, BT, RL)", o.RankDir)
	}
	if o.ConfigurePanel == nil {
		return errors.ValidatePluginID(o.PluginID)
	}
	return nil
}

// NeedsPanelFlag reports whether any requested format draws the vis widget.
func (o *Options) NeedsPanelFlag() bool {
	if o.ConfigurePanel != nil {
		return false
	}
	for _, f := range o.Formats {
		if f == FormatHTML || f == FormatVis {
			return true
		}
	}
	return false
}

// NodelinkOptions returns the DOT options.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{Detailed: o.Detailed, RankDir: o.RankDir}
}

// Result contains the outputs of a draw.
type Result struct {
	// Tags is the primary fetch result in server order.
	Tags []tags.Tag
	// Count is the server-side match count.
	Count int

	Excluded graph.ExclusionSet
	Graph    graph.Graph
	Network  *vis.Network

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Panel is the plugin options flag. PanelErr is set when the lookup
	// failed; the panel is then disabled.
	Panel    plugin.Flag
	PanelErr error

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains draw statistics.
type Stats struct {
	TagCount      int
	NodeCount     int
	EdgeCount     int
	ExcludedCount int
	DanglingEdges int
	FetchTime     time.Duration
	ExcludeTime   time.Duration
	BuildTime     time.Duration
	RenderTime    time.Duration
}

// CacheInfo records which fetches were served from cache.
type CacheInfo struct {
	TagsHit       bool
	ExclusionsHit bool
}

// Summary is a one-line description used in page headers and logs.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d tags, %d edges, %d excluded", r.Stats.NodeCount, r.Stats.EdgeCount, r.Stats.ExcludedCount)
}
