package rtui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/recent"
)

// navKeys maps physical keys to logical navigation keys for the recent topics
// view. Letters are only navigation while no text input has focus.
var navKeys = map[string]recent.InputKey{
	"tab":       recent.KeyTab,
	"shift+tab": recent.KeyShiftTab,
	"left":      recent.KeyLeftArrow,
	"right":     recent.KeyRightArrow,
	"up":        recent.KeyUpArrow,
	"down":      recent.KeyDownArrow,
	"esc":       recent.KeyEscape,
}

var letterKeys = map[string]recent.InputKey{
	"h": recent.KeyVimLeft,
	"l": recent.KeyVimRight,
	"k": recent.KeyVimUp,
	"j": recent.KeyVimDown,
	"t": recent.KeyOpenRecentTopics,
}

// searchKeys are the letters that reach the focus machine from the search
// box. The machine leaves vim letters to the text; "t" is plain text there.
var searchKeys = map[string]recent.InputKey{
	"h": recent.KeyVimLeft,
	"l": recent.KeyVimRight,
	"k": recent.KeyVimUp,
	"j": recent.KeyVimDown,
}

func mapRecentKey(key string, typing bool) (recent.InputKey, bool) {
	if k, ok := navKeys[key]; ok {
		return k, true
	}
	table := letterKeys
	if typing {
		table = searchKeys
	}
	k, ok := table[key]
	return k, ok
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.showHelp {
		switch key {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return nil
	}
	if m.compose.active {
		return m.handleComposeKey(msg)
	}
	if m.active == ViewRecent {
		return m.handleRecentKey(msg)
	}
	return m.handleConversationKey(msg)
}

// focusOrigin is where a key press physically lands: the search input when it
// holds the caret, otherwise whatever the view last drew as focused.
func (m *Model) focusOrigin() recent.Focus {
	if m.search.Focused() {
		return recent.SearchFocus()
	}
	return m.recent.AppliedFocus()
}

func (m *Model) searchCursor() recent.TextCursor {
	pos := m.search.Position()
	return recent.TextCursor{Start: pos, End: pos, Length: utf8.RuneCountInString(m.search.Value())}
}

func (m *Model) handleRecentKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	origin := m.focusOrigin()
	typing := origin.Kind == recent.FocusSearch

	if logical, ok := mapRecentKey(key, typing); ok {
		if m.recent.ChangeFocusedElement(origin, logical, m.searchCursor()) {
			return nil
		}
	}

	if typing {
		return m.updateSearch(msg)
	}

	switch key {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.recent.FocusSearch()
		return textinput.Blink
	case "S":
		m.recent.SetSort(recent.SortStream)
	case "T":
		m.recent.SetSort(recent.SortTopic)
	case "R":
		m.recent.SetSort(recent.SortRecency)
	case "enter", " ":
		m.activateFocused()
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.recent.SetSearch(m.search.Value())
	return cmd
}

// activateFocused acts on the focused filter button or table cell.
func (m *Model) activateFocused() {
	applied := m.recent.AppliedFocus()
	switch applied.Kind {
	case recent.FocusFilterButton:
		m.toggleFilter(applied.Filter)
	case recent.FocusTable:
		row, col, ok := m.recent.FocusedRow()
		if !ok {
			return
		}
		m.activateCell(row, col)
	}
}

func (m *Model) toggleFilter(f recent.Filter) {
	if err := m.recent.SetFilter(f); err != nil {
		m.setStatus("save filters: "+err.Error(), true)
		return
	}
	m.setStatus("", false)
}

func (m *Model) activateCell(row recent.Row, col int) {
	switch col {
	case recent.ColStream:
		m.narrowTo(row.StreamID, row.Stream, "")
	case recent.ColTopic:
		m.narrowTo(row.StreamID, row.Stream, row.Topic)
	case recent.ColUnread:
		m.markTopicRead(row)
	case recent.ColMute:
		m.toggleTopicMute(row)
	}
}

func (m *Model) markTopicRead(row recent.Row) {
	msgs := m.realm.Messages.MessagesInTopic(row.StreamID, row.Topic)
	ids := make([]chat.MessageID, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}
	for _, ref := range m.realm.Unread.MarkRead(ids) {
		m.recent.UpdateTopicUnreadCount(ref)
	}
}

func (m *Model) toggleTopicMute(row recent.Row) {
	m.realm.Muted.SetTopicMuted(row.StreamID, row.Topic, !row.TopicMuted)
	if !m.recent.UpdateTopicIsMuted(row.StreamID, row.Topic) {
		m.recent.CompleteRerender()
	}
}

func (m *Model) handleConversationKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = true
	case "t":
		m.openRecentTopics()
	case "c":
		return m.openCompose()
	case "esc":
		m.ResetNarrow()
		m.ActivateConversation()
	case "up", "k":
		m.convScroll++
	case "down", "j":
		m.convScroll = max(0, m.convScroll-1)
	case "home", "g":
		m.convScroll = 0
	}
	return nil
}

func (m *Model) openCompose() tea.Cmd {
	m.compose.active = true
	m.compose.input.SetValue(m.draft)
	m.compose.input.CursorEnd()
	m.draft = ""
	m.compose.input.Focus()
	return textinput.Blink
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.SaveDraft()
		m.CancelCompose()
		return nil
	case "ctrl+t":
		m.openRecentTopics()
		return nil
	case "enter":
		content := strings.TrimSpace(m.compose.input.Value())
		if content == "" {
			return nil
		}
		if _, ok := m.sendLocalEcho(content); ok {
			m.compose.input.Reset()
			m.convScroll = 0
			m.setStatus("", false)
		}
		return nil
	}
	var cmd tea.Cmd
	m.compose.input, cmd = m.compose.input.Update(msg)
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.active != ViewRecent || m.showHelp {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.tableOffset = max(0, m.tableOffset-1)
		return nil
	case tea.MouseButtonWheelDown:
		m.tableOffset++
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	switch msg.Y {
	case m.searchLineY:
		cmd := m.search.Focus()
		m.recent.ChangeFocusedElement(recent.SearchFocus(), recent.KeyClick, m.searchCursor())
		return cmd
	case m.searchLineY + 1:
		for _, span := range m.filterSpans {
			if msg.X >= span.start && msg.X < span.end {
				m.toggleFilter(span.filter)
				return nil
			}
		}
	}
	return nil
}
