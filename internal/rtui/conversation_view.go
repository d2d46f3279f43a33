package rtui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/rtopics/internal/chat"
)

// conversationMessages returns the messages in the active narrow, oldest
// first. Without a narrow every stream message is shown.
func (m *Model) conversationMessages() []chat.Message {
	if !m.narrow.isZero() && m.narrow.topic != "" {
		return m.realm.Messages.MessagesInTopic(m.narrow.streamID, m.narrow.topic)
	}
	all := m.realm.Messages.All()
	out := make([]chat.Message, 0, len(all))
	for _, msg := range all {
		if !msg.IsStream() {
			continue
		}
		if !m.narrow.isZero() && msg.StreamID != m.narrow.streamID {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (m *Model) renderConversationView(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	var composeLines []string
	if m.compose.active {
		m.compose.input.Width = max(10, width-4)
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.Base.Accent)).
			Width(max(0, width-2)).
			Render(m.compose.input.View())
		composeLines = strings.Split(box, "\n")
	}
	bodyHeight := max(0, height-len(composeLines))

	var lines []string
	for _, msg := range m.conversationMessages() {
		lines = append(lines, m.renderMessage(msg, width))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.MutedStyle().Render("No messages."))
	}

	// convScroll counts lines up from the newest message.
	m.convScroll = min(m.convScroll, max(0, len(lines)-bodyHeight))
	end := len(lines) - m.convScroll
	start := max(0, end-bodyHeight)
	visible := append([]string(nil), lines[start:end]...)
	for len(visible) < bodyHeight {
		visible = append([]string{""}, visible...)
	}
	return strings.Join(append(visible, composeLines...), "\n")
}

func (m *Model) renderMessage(msg chat.Message, width int) string {
	sender := fmt.Sprintf("user%d", msg.SenderID)
	if p, ok := m.realm.People.Get(msg.SenderID); ok && p.FullName != "" {
		sender = p.FullName
	}
	when := ""
	if t := msg.Time(); !t.IsZero() {
		when = t.Local().Format("15:04")
	}

	prefix := ""
	if m.narrow.topic == "" {
		prefix = msg.Topic + " | "
		if m.narrow.isZero() {
			prefix = "#" + msg.Stream + " > " + prefix
		}
	}
	head := m.theme.MutedStyle().Render(when) + " " + m.theme.AccentStyle().Render(sender)
	if msg.ID.IsLocal() {
		head += m.theme.MutedStyle().Render(" (sending)")
	}
	return truncateVis(head+": "+prefix+strings.ReplaceAll(msg.Content, "\n", " "), width)
}
