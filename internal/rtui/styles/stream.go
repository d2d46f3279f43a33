package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stream privacy glyphs, shown before the stream name.
const (
	GlyphPublic     = "#"
	GlyphInviteOnly = "🔒"
	GlyphWebPublic  = "🌐"
)

// StreamGlyph picks the privacy glyph for a stream.
func StreamGlyph(inviteOnly, webPublic bool) string {
	switch {
	case inviteOnly:
		return GlyphInviteOnly
	case webPublic:
		return GlyphWebPublic
	default:
		return GlyphPublic
	}
}

// StreamStyle colors a stream name with its subscription color. Colors are
// "#rrggbb" strings; anything else falls back to the theme accent.
func StreamStyle(theme Theme, color string) lipgloss.Style {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") || (len(color) != 7 && len(color) != 4) {
		color = theme.Base.Accent
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
