package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	// LayoutGap is the default space between columns.
	LayoutGap = 2

	// LayoutInnerPadding is the default panel content padding.
	LayoutInnerPadding = 1
)

const (
	minStreamWidth  = 8
	maxStreamWidth  = 24
	minTopicWidth   = 12
	unreadWidth     = 6
	muteWidth       = 6
	sendersWidth    = 16
	timeWidth       = 14
	timeColumnBreak = 60
	wideTableBreak  = 96
	streamShareDiv  = 5
)

// TableWidths are the recent topics column widths. Zero means the column is
// dropped at this terminal width.
type TableWidths struct {
	Stream  int
	Topic   int
	Unread  int
	Mute    int
	Senders int
	Time    int
}

// ComputeTableWidths returns responsive widths for the recent topics table.
// The four focusable columns are always kept; senders and time are dropped on
// narrow terminals.
func ComputeTableWidths(totalWidth int) TableWidths {
	if totalWidth <= 0 {
		return TableWidths{}
	}

	w := TableWidths{
		Stream: clampInt(totalWidth/streamShareDiv, minStreamWidth, maxStreamWidth),
		Unread: unreadWidth,
		Mute:   muteWidth,
	}
	columns := 4
	if totalWidth >= timeColumnBreak {
		w.Time = timeWidth
		columns++
	}
	if totalWidth >= wideTableBreak {
		w.Senders = sendersWidth
		columns++
	}
	gaps := (columns - 1) * LayoutGap
	w.Topic = totalWidth - w.Stream - w.Unread - w.Mute - w.Senders - w.Time - gaps
	if w.Topic < minTopicWidth {
		w.Topic = minTopicWidth
	}
	return w
}

// PanelStyle returns a focused/unfocused border style for panes.
func PanelStyle(theme Theme, focused bool) lipgloss.Style {
	color := theme.Base.Border
	if focused {
		color = theme.Base.Accent
	}
	return lipgloss.NewStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, LayoutInnerPadding)
}

func panelBorderStyle(theme Theme) lipgloss.Border {
	switch theme.BorderStyle {
	case "double":
		return lipgloss.DoubleBorder()
	case "sharp":
		return lipgloss.NormalBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// Fit truncates s to width display cells and pads it on the right.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// FitLeft is Fit with right alignment, for numbers.
func FitLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillLeft(s, width)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
