package recent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type stubSurface struct {
	buttons []Filter
	rows    int
	applied []Focus
}

func (s *stubSurface) RenderedFilterButtons() []Filter { return s.buttons }
func (s *stubSurface) RenderedRowCount() int           { return s.rows }
func (s *stubSurface) ApplyFocus(f Focus)              { s.applied = append(s.applied, f) }

func (s *stubSurface) last() Focus {
	if len(s.applied) == 0 {
		return Focus{}
	}
	return s.applied[len(s.applied)-1]
}

func newSurface(rows int) *stubSurface {
	return &stubSurface{buttons: append([]Filter(nil), FilterButtons...), rows: rows}
}

func TestFocusStartsOnSearchWithTopicColumn(t *testing.T) {
	m := NewFocusMachine(newSurface(3))
	require.Equal(t, SearchFocus(), m.Current())
	row, col := m.Cell()
	require.Equal(t, 0, row)
	require.Equal(t, ColTopic, col)
}

func TestFocusSearchVimKeysTypeText(t *testing.T) {
	s := newSurface(3)
	m := NewFocusMachine(s)
	for _, key := range []InputKey{KeyVimLeft, KeyVimRight, KeyVimUp, KeyVimDown} {
		require.False(t, m.Handle(SearchFocus(), key, TextCursor{}))
	}
	require.Empty(t, s.applied)
}

func TestFocusSearchArrowsRespectCaret(t *testing.T) {
	s := newSurface(3)
	m := NewFocusMachine(s)

	// Caret mid-text: arrows move the caret.
	require.False(t, m.Handle(SearchFocus(), KeyLeftArrow, TextCursor{Start: 2, End: 2, Length: 4}))
	require.False(t, m.Handle(SearchFocus(), KeyRightArrow, TextCursor{Start: 2, End: 2, Length: 4}))
	// A selection also keeps the arrow in the input.
	require.False(t, m.Handle(SearchFocus(), KeyLeftArrow, TextCursor{Start: 0, End: 3, Length: 4}))

	require.True(t, m.Handle(SearchFocus(), KeyLeftArrow, TextCursor{Start: 0, End: 0, Length: 4}))
	require.Equal(t, FilterButtonFocus(FilterIncludeMuted), m.Current())
	require.Equal(t, m.Current(), s.last())

	require.True(t, m.Handle(SearchFocus(), KeyRightArrow, TextCursor{Start: 4, End: 4, Length: 4}))
	require.Equal(t, FilterButtonFocus(FilterAll), m.Current())
}

func TestFocusSearchTabCyclesButtons(t *testing.T) {
	m := NewFocusMachine(newSurface(3))
	require.True(t, m.Handle(SearchFocus(), KeyTab, TextCursor{}))
	require.Equal(t, FilterButtonFocus(FilterAll), m.Current())

	require.True(t, m.Handle(m.Current(), KeyTab, TextCursor{}))
	require.Equal(t, FilterButtonFocus(FilterUnread), m.Current())

	require.True(t, m.Handle(m.Current(), KeyShiftTab, TextCursor{}))
	require.Equal(t, FilterButtonFocus(FilterAll), m.Current())

	// Stepping off the left end lands on search.
	require.True(t, m.Handle(m.Current(), KeyVimLeft, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())

	require.True(t, m.Handle(SearchFocus(), KeyShiftTab, TextCursor{}))
	require.Equal(t, FilterButtonFocus(FilterIncludeMuted), m.Current())
	require.True(t, m.Handle(m.Current(), KeyRightArrow, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())
}

func TestFocusDownEntersTableAtRememberedCell(t *testing.T) {
	s := newSurface(3)
	m := NewFocusMachine(s)
	require.True(t, m.Handle(SearchFocus(), KeyDownArrow, TextCursor{}))
	require.Equal(t, TableFocus(0, ColTopic), m.Current())

	require.True(t, m.Handle(m.Current(), KeyDownArrow, TextCursor{}))
	require.True(t, m.Handle(m.Current(), KeyRightArrow, TextCursor{}))
	require.Equal(t, TableFocus(1, ColUnread), m.Current())

	require.True(t, m.Handle(m.Current(), KeyOpenRecentTopics, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())

	// Escape from search returns to the remembered cell.
	require.True(t, m.Handle(SearchFocus(), KeyEscape, TextCursor{}))
	require.Equal(t, TableFocus(1, ColUnread), m.Current())
	require.Equal(t, TableFocus(1, ColUnread), s.last())
}

func TestFocusFilterButtonDownEntersTable(t *testing.T) {
	m := NewFocusMachine(newSurface(2))
	require.True(t, m.Handle(FilterButtonFocus(FilterUnread), KeyVimDown, TextCursor{}))
	require.Equal(t, TableFocus(0, ColTopic), m.Current())
}

func TestFocusEscapeFromTableIsNotHandled(t *testing.T) {
	m := NewFocusMachine(newSurface(2))
	require.True(t, m.SetTableFocus(1, ColStream))
	require.False(t, m.Handle(m.Current(), KeyEscape, TextCursor{}))
	require.Equal(t, TableFocus(1, ColStream), m.Current())

	// Escape from search while the table still holds logical focus.
	require.False(t, m.Handle(SearchFocus(), KeyEscape, TextCursor{}))
}

func TestFocusTableRowOutOfRangeFallsBackToSearch(t *testing.T) {
	s := newSurface(2)
	m := NewFocusMachine(s)
	require.True(t, m.SetTableFocus(1, ColMute))

	require.True(t, m.Handle(m.Current(), KeyDownArrow, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())
	row, col := m.Cell()
	require.Equal(t, 0, row)
	require.Equal(t, ColMute, col)

	require.True(t, m.SetTableFocus(0, ColStream))
	require.True(t, m.Handle(m.Current(), KeyVimUp, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())
}

func TestFocusEmptyTableKeepsSearch(t *testing.T) {
	m := NewFocusMachine(newSurface(0))
	require.True(t, m.Handle(SearchFocus(), KeyDownArrow, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())
}

func TestFocusClickOnSearchDoesNotReapply(t *testing.T) {
	s := newSurface(2)
	m := NewFocusMachine(s)
	require.True(t, m.SetTableFocus(0, ColTopic))
	applied := len(s.applied)

	require.True(t, m.Handle(SearchFocus(), KeyClick, TextCursor{}))
	require.Equal(t, SearchFocus(), m.Current())
	require.Len(t, s.applied, applied)
}

func TestFocusUnhandledKeyReappliesCurrent(t *testing.T) {
	s := newSurface(2)
	m := NewFocusMachine(s)
	require.True(t, m.Handle(FilterButtonFocus(FilterUnread), KeyClick, TextCursor{}))
	require.Equal(t, SearchFocus(), s.last())
}

func TestFocusMissingButtonFallsBackToSearch(t *testing.T) {
	s := newSurface(2)
	m := NewFocusMachine(s)
	require.True(t, m.Handle(SearchFocus(), KeyTab, TextCursor{}))
	require.Equal(t, FilterButtonFocus(FilterAll), m.Current())

	s.buttons = []Filter{FilterUnread}
	require.True(t, m.Revive(false))
	require.Equal(t, SearchFocus(), m.Current())
}

func TestFocusReviveSkipsWhileTyping(t *testing.T) {
	s := newSurface(2)
	m := NewFocusMachine(s)
	require.False(t, m.Revive(true))
	require.Empty(t, s.applied)

	require.True(t, m.SetTableFocus(1, ColTopic))
	s.rows = 1
	require.True(t, m.Revive(false))
	require.Equal(t, SearchFocus(), m.Current())
}

func TestFocusColumnWrapsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewFocusMachine(newSurface(1))
		require.True(t, m.SetTableFocus(0, 0))
		col := 0
		steps := rapid.SliceOfN(rapid.SampledFrom([]InputKey{KeyLeftArrow, KeyRightArrow, KeyVimLeft, KeyVimRight, KeyTab, KeyShiftTab}), 1, 30).Draw(t, "keys")
		for _, key := range steps {
			switch key {
			case KeyLeftArrow, KeyVimLeft, KeyShiftTab:
				col = (col + MaxSelectableCols - 1) % MaxSelectableCols
			default:
				col = (col + 1) % MaxSelectableCols
			}
			require.True(t, m.Handle(m.Current(), key, TextCursor{}))
			require.Equal(t, TableFocus(0, col), m.Current())
		}
	})
}

func TestFocusColumnWrapEdges(t *testing.T) {
	m := NewFocusMachine(newSurface(1))
	require.True(t, m.SetTableFocus(0, ColMute))
	m.Handle(m.Current(), KeyRightArrow, TextCursor{})
	require.Equal(t, ColStream, m.Current().Col)
	m.Handle(m.Current(), KeyLeftArrow, TextCursor{})
	require.Equal(t, ColMute, m.Current().Col)
}
