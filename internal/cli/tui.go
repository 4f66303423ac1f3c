package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/taggraph/pkg/graph"
	"github.com/matzehuels/taggraph/pkg/tags"
)

var (
	listDimStyle     = lipgloss.NewStyle().Foreground(colorFaint)
	pickHeaderStyle  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	pickCursorStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	pickExcludeStyle = lipgloss.NewStyle().Foreground(colorBad)
)

// =============================================================================
// TagPickerModel - Interactive exclusion selection
// =============================================================================

// TagPickerModel is the bubbletea model for toggling excluded tags before a
// draw. Tags are listed in fetch order.
type TagPickerModel struct {
	Tags     []tags.Tag
	Excluded graph.ExclusionSet
	Cursor   int
	Offset   int
	Height   int

	// Confirmed is set when the user accepts the selection with enter.
	Confirmed bool
}

// NewTagPickerModel creates a picker with the given ids preselected.
func NewTagPickerModel(ts []tags.Tag, excluded graph.ExclusionSet) TagPickerModel {
	return TagPickerModel{
		Tags:     ts,
		Excluded: graph.NewExclusionSet(excluded.IDs()...),
		Height:   15,
	}
}

func (m TagPickerModel) Init() tea.Cmd {
	return nil
}

func (m TagPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tags)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Tags) > 0 {
				m.toggle(m.Tags[m.Cursor].ID)
			}
		case "n":
			m.Excluded = graph.NewExclusionSet()
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

// toggle flips id. Excluded is a map, so the copy held by the returned
// model shares it; a fresh set replaces it to keep earlier models intact.
func (m *TagPickerModel) toggle(id string) {
	next := graph.NewExclusionSet(m.Excluded.IDs()...)
	if next.Has(id) {
		delete(next, id)
	} else {
		next.Add(id)
	}
	m.Excluded = next
}

func (m TagPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Exclude Tags"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  n clear  ⏎ draw  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Tags) {
		end = len(m.Tags)
	}

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		t := m.Tags[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Excluded.Has(t.ID) {
			mark = "[x]"
		}
		rows = append(rows, []string{
			cursor,
			mark,
			t.Name,
			t.ID,
			strconv.Itoa(t.SceneCount),
			strconv.Itoa(len(t.Children)),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "Excl", "Tag", "ID", "Scenes", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return pickHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Tags) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return pickCursorStyle
			case m.Excluded.Has(m.Tags[idx].ID):
				return pickExcludeStyle
			default:
				return lipgloss.NewStyle().Foreground(colorBright)
			}
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d excluded", m.Cursor+1, len(m.Tags), m.Excluded.Len())))

	return b.String()
}

// runPicker shows the picker and returns the confirmed exclusion set.
// ok is false when the user quit without confirming.
func runPicker(ts []tags.Tag, preselected graph.ExclusionSet) (graph.ExclusionSet, bool, error) {
	final, err := tea.NewProgram(NewTagPickerModel(ts, preselected), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, false, err
	}
	m, ok := final.(TagPickerModel)
	if !ok || !m.Confirmed {
		return nil, false, nil
	}
	return m.Excluded, true, nil
}
