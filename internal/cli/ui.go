package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/taggraph/pkg/pipeline"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorBad    = lipgloss.Color("167")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
	colorBright = lipgloss.Color("255")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorBright)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleMuted       = lipgloss.NewStyle().Foreground(colorMuted)
	styleOK          = lipgloss.NewStyle().Foreground(colorOK)
	styleKey         = styleMuted.Width(12)
)

// statusLine prints one message prefixed by a colored marker.
func statusLine(w io.Writer, marker string, markerStyle, textStyle lipgloss.Style, format string, args []any) {
	text := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "%s %s\n", markerStyle.Render(marker), textStyle.Render(text))
}

var plain = lipgloss.NewStyle()

func printSuccess(w io.Writer, format string, args ...any) {
	statusLine(w, "✓", styleOK, plain, format, args)
}

func printWarning(w io.Writer, format string, args ...any) {
	statusLine(w, "!", StyleWarning, StyleWarning, format, args)
}

func printInfo(w io.Writer, format string, args ...any) {
	statusLine(w, "›", styleMuted, plain, format, args)
}

// printDetail prints an indented muted line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(w io.Writer, path string) {
	fmt.Fprintf(w, "  %s %s\n", StyleDim.Render("→"), StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", styleKey.Render(key), StyleValue.Render(value))
}

// printStats summarizes a draw, e.g. "42 tags · 57 edges · 3 excluded · cached".
// Zero exclusion and dangling counts are left out.
func printStats(w io.Writer, s pipeline.Stats, cached bool) {
	fields := []string{
		StyleDim.Render(fmt.Sprintf("%d tags", s.NodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", s.EdgeCount)),
	}
	for _, opt := range []struct {
		n    int
		unit string
	}{{s.ExcludedCount, "excluded"}, {s.DanglingEdges, "dangling"}} {
		if opt.n > 0 {
			fields = append(fields, StyleDim.Render(fmt.Sprintf("%d %s", opt.n, opt.unit)))
		}
	}
	if cached {
		fields = append(fields, styleOK.Render("cached"))
	} else {
		fields = append(fields, styleMuted.Render("fresh"))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(fields, StyleDim.Render(" · ")))
}
