package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles picker and table headings.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// CursorStyle highlights the selected row.
	CursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

	// NoteStyle renders trailing annotations such as the installed marker.
	NoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// AdvisoryStyle renders non-fatal warnings shown alongside a list.
	AdvisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ErrorStyle renders failures.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	// HelpStyle renders the key help footer.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	sourceStyles = map[string]lipgloss.Style{
		// Fresh data
		"live":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"cache":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"memory": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Degraded
		"stale-cache": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"catalog":     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"fallback":    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// SourceStyle returns the lipgloss style for a result source such as "live"
// or "stale-cache".
func SourceStyle(source string) lipgloss.Style {
	if s, ok := sourceStyles[source]; ok {
		return s
	}
	return lipgloss.NewStyle().Faint(true)
}
