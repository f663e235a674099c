// Package theme centralizes the lipgloss styles used across the UI so the
// look-and-feel lives in one place.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every UI element.
type Theme struct {
	Name string

	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style

	MutedText   lipgloss.Style
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style

	InputLabel  lipgloss.Style
	Placeholder lipgloss.Style

	TreeDatabase lipgloss.Style
	TreeSchema   lipgloss.Style
	TreeTable    lipgloss.Style
	TreeSelected lipgloss.Style
	TreeMatch    lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabBar      lipgloss.Style

	GridHeader      lipgloss.Style
	GridCell        lipgloss.Style
	GridCellAlt     lipgloss.Style
	GridSelected    lipgloss.Style

	DropdownItem     lipgloss.Style
	DropdownSelected lipgloss.Style
	DropdownBorder   lipgloss.Style

	DialogBorder lipgloss.Style
	DialogTitle  lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
}

// Current is the active theme. Components read it at render time.
var Current = Default()

// Default returns the built-in color scheme.
func Default() *Theme {
	return &Theme{
		Name: "default",

		FocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#569CD6")),
		UnfocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),

		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		ErrorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F44747")),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color("#6A9955")),

		InputLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#DCDCAA")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		TreeDatabase: lipgloss.NewStyle().Foreground(lipgloss.Color("#569CD6")).Bold(true),
		TreeSchema:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4EC9B0")),
		TreeTable:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
		TreeSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#569CD6")),
		TreeMatch: lipgloss.NewStyle().Foreground(lipgloss.Color("#CE9178")).Bold(true),

		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Underline(true).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Padding(0, 1),
		TabBar: lipgloss.NewStyle(),

		GridHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DCDCAA")),
		GridCell:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
		GridCellAlt: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		GridSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#569CD6")),

		DropdownItem: lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
		DropdownSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E1E")).
			Background(lipgloss.Color("#DCDCAA")),
		DropdownBorder: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")),

		DialogBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F44747")).
			Padding(1, 2),
		DialogTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F44747")),
		HelpKey:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CE9178")),
		HelpDesc:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
	}
}
