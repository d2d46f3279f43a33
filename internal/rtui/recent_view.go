package rtui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tOgg1/rtopics/internal/recent"
	"github.com/tOgg1/rtopics/internal/rtui/styles"
)

// Lines above the first table row: search, filter bar, headings.
const recentChromeLines = 3

type filterSpan struct {
	start  int
	end    int
	filter recent.Filter
}

func (m *Model) renderRecentView(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	m.search.Width = max(10, width-lipgloss.Width(m.search.Prompt)-2)

	lines := make([]string, 0, height)
	lines = append(lines, m.search.View())
	lines = append(lines, m.renderFilterBar())

	widths := styles.ComputeTableWidths(width)
	lines = append(lines, m.renderHeadings(widths))

	rows := m.recent.Rows()
	bodyHeight := max(0, height-recentChromeLines)
	focus, hasCell := m.focusedCell()
	m.tableOffset = scrollOffset(m.tableOffset, focus.Row, hasCell, len(rows), bodyHeight)

	if len(rows) == 0 && bodyHeight > 0 {
		lines = append(lines, m.theme.MutedStyle().Render(emptyTableText(m.recent)))
	}
	end := min(len(rows), m.tableOffset+bodyHeight)
	for i := m.tableOffset; i < end; i++ {
		col := -1
		if hasCell && focus.Row == i {
			col = focus.Col
		}
		lines = append(lines, m.renderRow(rows[i], widths, col))
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

// focusedCell reports the drawn table focus. A focused search input owns the
// caret, so no cell is highlighted then.
func (m *Model) focusedCell() (recent.Focus, bool) {
	applied := m.recent.AppliedFocus()
	if applied.Kind != recent.FocusTable || m.search.Focused() {
		return recent.Focus{}, false
	}
	return applied, true
}

func (m *Model) renderFilterBar() string {
	applied := m.recent.AppliedFocus()
	buttons := m.recent.FilterBar()
	parts := make([]string, 0, len(buttons))
	m.filterSpans = m.filterSpans[:0]
	x := 0
	for i, b := range buttons {
		focused := !m.search.Focused() && applied.Kind == recent.FocusFilterButton && applied.Filter == b.Filter
		label := b.Filter.Label()
		if b.Selected {
			label = "✓ " + label
		}
		rendered := m.theme.FilterButtonStyle(b.Selected, focused).Render(label)
		if i > 0 {
			x++
		}
		w := lipgloss.Width(rendered)
		m.filterSpans = append(m.filterSpans, filterSpan{start: x, end: x + w, filter: b.Filter})
		x += w
		parts = append(parts, rendered)
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderHeadings(w styles.TableWidths) string {
	field, reverse := m.recent.Sort()
	arrow := " ▲"
	if reverse {
		arrow = " ▼"
	}
	stream, topic, when := "Stream", "Topic", "Time"
	switch field {
	case recent.SortStream:
		stream += arrow
	case recent.SortTopic:
		topic += arrow
	default:
		when += arrow
	}
	cells := []string{
		styles.Fit(stream, w.Stream),
		styles.Fit(topic, w.Topic),
		styles.FitLeft("Unread", w.Unread),
		styles.Fit("Mute", w.Mute),
	}
	if w.Senders > 0 {
		cells = append(cells, styles.Fit("Senders", w.Senders))
	}
	if w.Time > 0 {
		cells = append(cells, styles.Fit(when, w.Time))
	}
	return m.theme.HeadingStyle().Render(joinCells(cells))
}

// renderRow draws one table row; focusCol is the highlighted column or -1.
func (m *Model) renderRow(row recent.Row, w styles.TableWidths, focusCol int) string {
	base := m.theme.CellStyle(false)
	if row.Muted {
		base = m.theme.MutedStyle()
	}
	cell := func(col int, text string, style lipgloss.Style) string {
		if col == focusCol {
			return m.theme.CellStyle(true).Render(text)
		}
		return style.Render(text)
	}

	streamText := styles.StreamGlyph(row.InviteOnly, row.WebPublic) + " " + row.Stream
	streamStyle := styles.StreamStyle(m.theme, row.StreamColor)
	if row.Muted {
		streamStyle = m.theme.MutedStyle()
	}

	topicStyle := base
	topicText := row.Topic
	if row.Participated {
		topicText = "@ " + topicText
		if !row.Muted {
			topicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Table.Participated))
		}
	}

	unreadText := ""
	unreadStyle := base
	if row.UnreadCount > 0 {
		unreadText = strconv.Itoa(row.UnreadCount)
		unreadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Table.Unread)).Bold(true)
	}

	cells := []string{
		cell(recent.ColStream, styles.Fit(streamText, w.Stream), streamStyle),
		cell(recent.ColTopic, styles.Fit(topicText, w.Topic), topicStyle),
		cell(recent.ColUnread, styles.FitLeft(unreadText, w.Unread), unreadStyle),
		cell(recent.ColMute, styles.Fit(muteLabel(row), w.Mute), base),
	}
	if w.Senders > 0 {
		cells = append(cells, base.Render(styles.Fit(sendersLabel(row), w.Senders)))
	}
	if w.Time > 0 {
		cells = append(cells, m.theme.MutedStyle().Render(styles.Fit(relativeTime(row.LastMsgTime, m.now()), w.Time)))
	}
	return joinCells(cells)
}

func muteLabel(row recent.Row) string {
	switch {
	case row.TopicMuted:
		return "[x]"
	case row.Muted:
		return "[s]"
	default:
		return "[ ]"
	}
}

func sendersLabel(row recent.Row) string {
	initials := make([]string, 0, len(row.Senders)+1)
	for _, p := range row.Senders {
		initials = append(initials, p.Initials())
	}
	if row.OtherSenders > 0 {
		initials = append(initials, "+"+strconv.Itoa(row.OtherSenders))
	}
	return strings.Join(initials, " ")
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) < time.Minute && !t.After(now) {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func emptyTableText(c *recent.Controller) string {
	if c.Search() != "" {
		return "No topics match your search."
	}
	if len(c.Filters()) > 0 {
		return "No topics match the current filters."
	}
	return "No recent topics yet."
}

func joinCells(cells []string) string {
	return strings.Join(cells, strings.Repeat(" ", styles.LayoutGap))
}

// scrollOffset keeps the focused row inside a window of height rows.
func scrollOffset(offset, focusRow int, hasFocus bool, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	if hasFocus {
		if focusRow < offset {
			offset = focusRow
		}
		if focusRow >= offset+height {
			offset = focusRow - height + 1
		}
	}
	return max(0, min(offset, total-height))
}
