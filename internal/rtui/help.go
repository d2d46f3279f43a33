package rtui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

func (m *Model) renderHelpOverlay(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	lines := make([]string, 0, 32)
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Chrome.Breadcrumb)).Render("Help")
	lines = append(lines, head, "")

	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Base.Accent))
	for _, sec := range helpForView(m.active) {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(sec.title))
		for _, it := range sec.items {
			lines = append(lines, "  "+keyStyle.Render(it.key)+"  "+it.desc)
		}
		lines = append(lines, "")
	}
	lines = append(lines, m.theme.MutedStyle().Render("Dismiss: ? or Esc"))

	panelWidth := min(max(40, width-10), 80)
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Base.Border)).
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Padding(1, 2).
		Width(panelWidth)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel.Render(strings.Join(lines, "\n")))
}

func helpForView(id ViewID) []helpSection {
	global := helpSection{
		title: "Global",
		items: []helpItem{
			{key: "q / Ctrl+C", desc: "quit"},
			{key: "?", desc: "toggle help"},
		},
	}

	switch id {
	case ViewRecent:
		return []helpSection{
			global,
			{title: "Recent topics", items: []helpItem{
				{key: "/", desc: "search"},
				{key: "Tab / Shift+Tab", desc: "next / previous element"},
				{key: "arrows, h/j/k/l", desc: "move focus"},
				{key: "Esc", desc: "jump to the table"},
				{key: "t", desc: "back to search"},
				{key: "Enter", desc: "open stream or topic, mark read, toggle mute, toggle filter"},
				{key: "S / T / R", desc: "sort by stream / topic / recency (repeat to reverse)"},
			}},
		}
	default:
		return []helpSection{
			global,
			{title: "Conversation", items: []helpItem{
				{key: "t", desc: "recent topics"},
				{key: "c", desc: "compose (restores draft)"},
				{key: "j/k", desc: "scroll"},
				{key: "Esc", desc: "all messages"},
			}},
			{title: "Compose", items: []helpItem{
				{key: "Enter", desc: "send"},
				{key: "Esc", desc: "save draft and close"},
				{key: "Ctrl+T", desc: "recent topics"},
			}},
		}
	}
}
