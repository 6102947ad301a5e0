package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// APIListModel - Interactive API selection
// =============================================================================

// APIListModel is the bubbletea model for picking a discovered API.
// APIs with an integration config are highlighted; only those can be selected.
type APIListModel struct {
	Records    []catalog.APIRecord
	Configured map[string]bool
	Cursor     int
	Selected   *catalog.APIRecord
	Height     int
	Offset     int
}

// NewAPIListModel creates a list model. configured holds the names present
// in the integration mapping.
func NewAPIListModel(records []catalog.APIRecord, configured []string) APIListModel {
	set := make(map[string]bool, len(configured))
	for _, name := range configured {
		set[name] = true
	}
	return APIListModel{Records: records, Configured: set, Height: 15}
}

func (m APIListModel) Init() tea.Cmd {
	return nil
}

func (m APIListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Records) == 0 {
				return m, nil
			}
			rec := m.Records[m.Cursor]
			if !m.Configured[rec.Name] {
				return m, nil
			}
			m.Selected = &rec
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m APIListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select API to integrate"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ integrate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Records))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		configured := ""
		if m.Configured[r.Name] {
			configured = "✓"
		}
		rows = append(rows, []string{cursor, orDash(r.Name), r.Specs.Type.Label(), orDash(r.Specs.Authentication), configured})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "API", "Spec", "Auth", "Config").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			configured := m.Configured[m.Records[idx].Name]
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			if configured {
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Records)), len(m.Records))))

	return b.String()
}
