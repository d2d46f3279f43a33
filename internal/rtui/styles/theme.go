package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header       string
	Footer       string
	Breadcrumb   string
	SelectedItem string
	Error        string
}

// TableColors defines colors for the recent topics table.
type TableColors struct {
	Heading      string
	FocusedCell  string
	Unread       string
	Muted        string
	Participated string
}

// FilterColors defines filter button colors.
type FilterColors struct {
	Selected   string
	Unselected string
	Focused    string
}

// Theme defines the rtopics TUI style/theme tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "double", "hidden"

	Base    BaseColors
	Chrome  ChromeColors
	Table   TableColors
	Filters FilterColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup returns the named theme, falling back to DefaultTheme.
func Lookup(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Error)).Bold(true)
}

// HeadingStyle is used for table column headings.
func (t Theme) HeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Table.Heading)).Bold(true)
}

// CellStyle styles one table cell; focused cells are drawn reversed.
func (t Theme) CellStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Foreground))
	if focused {
		style = style.Reverse(true).Foreground(lipgloss.Color(t.Table.FocusedCell))
	}
	return style
}

// FilterButtonStyle styles a filter bar button.
func (t Theme) FilterButtonStyle(selected, focused bool) lipgloss.Style {
	color := t.Filters.Unselected
	if selected {
		color = t.Filters.Selected
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Padding(0, 1)
	if selected {
		style = style.Bold(true)
	}
	if focused {
		style = style.Reverse(true).Foreground(lipgloss.Color(t.Filters.Focused))
	}
	return style
}
