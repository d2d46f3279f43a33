package recent

import "fmt"

// MaxSelectableCols is the number of focusable cells per table row. Left and
// right wrap around within it.
const MaxSelectableCols = 4

// Table columns, in focus order.
const (
	ColStream = iota
	ColTopic
	ColUnread
	ColMute
)

// Start on the topic column so Down then Enter visits a topic.
const defaultFocusCol = ColTopic

type FocusKind int

const (
	// FocusNone means nothing in the view holds focus (the view is hidden).
	FocusNone FocusKind = iota
	FocusSearch
	FocusFilterButton
	FocusTable
)

// Focus is a logical focus position: the search box, one filter button, or
// one table cell.
type Focus struct {
	Kind   FocusKind
	Filter Filter
	Row    int
	Col    int
}

func SearchFocus() Focus { return Focus{Kind: FocusSearch} }

func FilterButtonFocus(f Filter) Focus { return Focus{Kind: FocusFilterButton, Filter: f} }

func TableFocus(row, col int) Focus { return Focus{Kind: FocusTable, Row: row, Col: col} }

func (f Focus) String() string {
	switch f.Kind {
	case FocusSearch:
		return "search"
	case FocusFilterButton:
		return "filter:" + string(f.Filter)
	case FocusTable:
		return fmt.Sprintf("table(%d,%d)", f.Row, f.Col)
	default:
		return "none"
	}
}

// InputKey is a logical key, already mapped from the physical key press.
type InputKey string

const (
	KeyTab              InputKey = "tab"
	KeyShiftTab         InputKey = "shift_tab"
	KeyLeftArrow        InputKey = "left_arrow"
	KeyRightArrow       InputKey = "right_arrow"
	KeyUpArrow          InputKey = "up_arrow"
	KeyDownArrow        InputKey = "down_arrow"
	KeyVimLeft          InputKey = "vim_left"
	KeyVimRight         InputKey = "vim_right"
	KeyVimUp            InputKey = "vim_up"
	KeyVimDown          InputKey = "vim_down"
	KeyEscape           InputKey = "escape"
	KeyClick            InputKey = "click"
	KeyOpenRecentTopics InputKey = "open_recent_topics"
)

// TextCursor is the caret/selection state of the search input.
type TextCursor struct {
	Start  int
	End    int
	Length int
}

func (c TextCursor) hasSelection() bool {
	return c.End-c.Start > 0
}

// FocusSurface is whatever draws the view: it knows which filter buttons and
// how many table rows are currently rendered, and it can put focus on one.
type FocusSurface interface {
	RenderedFilterButtons() []Filter
	RenderedRowCount() int
	ApplyFocus(Focus)
}

// FocusMachine tracks logical focus independently of the rendered surface.
// Table coordinates are remembered while focus is elsewhere.
type FocusMachine struct {
	surface FocusSurface
	current Focus
	row     int
	col     int
}

func NewFocusMachine(surface FocusSurface) *FocusMachine {
	return &FocusMachine{
		surface: surface,
		current: SearchFocus(),
		col:     defaultFocusCol,
	}
}

func (m *FocusMachine) Current() Focus { return m.current }

// Cell returns the remembered table coordinates.
func (m *FocusMachine) Cell() (row, col int) { return m.row, m.col }

func (m *FocusMachine) Reset() {
	m.current = SearchFocus()
	m.row = 0
	m.col = defaultFocusCol
}

// SetDefaultFocus moves focus to the search box. It is the fallback whenever
// the current target can no longer be found.
func (m *FocusMachine) SetDefaultFocus() {
	m.current = SearchFocus()
	m.surface.ApplyFocus(m.current)
}

// SetTableFocus focuses a table cell, or falls back to the search box with the
// row reset when row is outside the rendered table.
func (m *FocusMachine) SetTableFocus(row, col int) bool {
	rows := m.surface.RenderedRowCount()
	if rows == 0 || row < 0 || row >= rows {
		m.row = 0
		m.SetDefaultFocus()
		return true
	}
	m.row = row
	m.col = col
	m.current = TableFocus(row, col)
	m.surface.ApplyFocus(m.current)
	return true
}

// Handle moves focus in response to key, which originated at origin. It
// returns true when the caller should suppress the key's default handling.
func (m *FocusMachine) Handle(origin Focus, key InputKey, cursor TextCursor) bool {
	switch origin.Kind {
	case FocusSearch:
		switch key {
		case KeyVimLeft, KeyVimRight, KeyVimDown, KeyVimUp:
			// Letters belong to the text being typed.
			return false
		case KeyShiftTab:
			m.current = m.lastButton()
		case KeyLeftArrow:
			if cursor.Start != 0 || cursor.hasSelection() {
				return false
			}
			m.current = m.lastButton()
		case KeyTab:
			m.current = m.firstButton()
		case KeyRightArrow:
			if cursor.End != cursor.Length || cursor.hasSelection() {
				return false
			}
			m.current = m.firstButton()
		case KeyDownArrow:
			return m.SetTableFocus(m.row, m.col)
		case KeyClick:
			// The input already has focus; re-applying it would move the caret.
			m.current = SearchFocus()
			return true
		case KeyEscape:
			if m.current.Kind == FocusTable {
				return false
			}
			return m.SetTableFocus(m.row, m.col)
		}
	case FocusFilterButton:
		switch key {
		case KeyShiftTab, KeyVimLeft, KeyLeftArrow:
			m.current = m.adjacentButton(origin.Filter, -1)
		case KeyTab, KeyVimRight, KeyRightArrow:
			m.current = m.adjacentButton(origin.Filter, 1)
		case KeyVimDown, KeyDownArrow:
			return m.SetTableFocus(m.row, m.col)
		case KeyEscape:
			if m.current.Kind == FocusTable {
				return false
			}
			return m.SetTableFocus(m.row, m.col)
		}
	default:
		if m.current.Kind == FocusTable {
			switch key {
			case KeyEscape:
				return false
			case KeyOpenRecentTopics:
				m.SetDefaultFocus()
				return true
			case KeyShiftTab, KeyVimLeft, KeyLeftArrow:
				m.col--
				if m.col < 0 {
					m.col = MaxSelectableCols - 1
				}
			case KeyTab, KeyVimRight, KeyRightArrow:
				m.col++
				if m.col >= MaxSelectableCols {
					m.col = 0
				}
			case KeyVimDown, KeyDownArrow:
				m.row++
			case KeyVimUp, KeyUpArrow:
				m.row--
			}
			return m.SetTableFocus(m.row, m.col)
		}
	}

	if key != KeyEscape {
		m.surface.ApplyFocus(m.current)
		return true
	}
	return false
}

// Revive re-applies logical focus to a freshly rendered surface. Nothing is
// applied while the user is typing, so a background render never steals the
// caret.
func (m *FocusMachine) Revive(typing bool) bool {
	if typing {
		return false
	}
	switch m.current.Kind {
	case FocusTable:
		return m.SetTableFocus(m.row, m.col)
	case FocusFilterButton:
		if m.indexOf(m.current.Filter) < 0 {
			m.SetDefaultFocus()
			return true
		}
		m.surface.ApplyFocus(m.current)
		return true
	default:
		m.SetDefaultFocus()
		return true
	}
}

func (m *FocusMachine) firstButton() Focus {
	buttons := m.surface.RenderedFilterButtons()
	if len(buttons) == 0 {
		return SearchFocus()
	}
	return FilterButtonFocus(buttons[0])
}

func (m *FocusMachine) lastButton() Focus {
	buttons := m.surface.RenderedFilterButtons()
	if len(buttons) == 0 {
		return SearchFocus()
	}
	return FilterButtonFocus(buttons[len(buttons)-1])
}

// adjacentButton steps from f along the filter bar; stepping off either end,
// or from a button no longer rendered, lands on the search box.
func (m *FocusMachine) adjacentButton(f Filter, step int) Focus {
	buttons := m.surface.RenderedFilterButtons()
	idx := m.indexOf(f)
	if idx < 0 {
		return SearchFocus()
	}
	next := idx + step
	if next < 0 || next >= len(buttons) {
		return SearchFocus()
	}
	return FilterButtonFocus(buttons[next])
}

func (m *FocusMachine) indexOf(f Filter) int {
	for i, b := range m.surface.RenderedFilterButtons() {
		if b == f {
			return i
		}
	}
	return -1
}
