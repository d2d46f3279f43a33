package rtui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Header)).
		Bold(true).
		Padding(0, 1)

	left := "rtopics"
	center := m.title
	right := m.feedStatus()
	line := joinHeader(left, center, right, max(0, m.width-2))
	return style.Width(max(0, m.width)).Render(line)
}

func (m *Model) renderFooter() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Footer)).
		Padding(0, 1)

	if m.status != "" {
		text := m.status
		if m.statusErr {
			text = m.theme.ErrorStyle().Render(text)
		}
		return style.Width(max(0, m.width)).Render(truncateVis(text, max(0, m.width-2)))
	}

	var base string
	switch {
	case m.compose.active:
		base = "Enter send  Esc save draft  Ctrl+T recent topics"
	case m.active == ViewRecent:
		base = "/ search  tab/arrows focus  Enter open  S/T/R sort  ? help  q quit"
	default:
		base = "t recent topics  c compose  Esc all messages  ? help  q quit"
	}
	return style.Width(max(0, m.width)).Render(truncateVis(base, max(0, m.width-2)))
}

func (m *Model) feedStatus() string {
	if m.follower == nil {
		return "no feed"
	}
	if m.skipped > 0 {
		return fmt.Sprintf("%d events, %d skipped", m.applied, m.skipped)
	}
	return fmt.Sprintf("%d events", m.applied)
}

func joinHeader(left, center, right string, width int) string {
	left = strings.TrimSpace(left)
	center = strings.TrimSpace(center)
	right = strings.TrimSpace(right)
	if width <= 0 {
		return left
	}

	space := width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if space < 2 {
		return truncateVis(left+"  "+center, width)
	}

	leftGap := space / 2
	rightGap := space - leftGap
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

// truncateVis cuts s to width terminal cells without splitting escape
// sequences.
func truncateVis(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
