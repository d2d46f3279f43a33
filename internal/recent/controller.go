package recent

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/logging"
)

const ViewTitle = "Recent topics"

type SortField int

const (
	SortRecency SortField = iota
	SortStream
	SortTopic
)

func (f SortField) String() string {
	switch f {
	case SortStream:
		return "stream"
	case SortTopic:
		return "topic"
	default:
		return "recency"
	}
}

// FilterButton is one rendered button of the filter bar.
type FilterButton struct {
	Filter   Filter
	Selected bool
}

type Option func(*Controller)

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithTypingProbe reports whether the user is typing into a text input.
// Focus revival is skipped while it returns true.
func WithTypingProbe(probe func() bool) Option {
	return func(c *Controller) {
		if probe != nil {
			c.typing = probe
		}
	}
}

// WithFocusHook is called whenever focus is applied to the rendered view.
func WithFocusHook(hook func(Focus)) Option {
	return func(c *Controller) {
		c.onFocus = hook
	}
}

// Controller owns all recent topics state: the topic index, filters, focus,
// and the rendered table. Every method must be called from the UI goroutine.
type Controller struct {
	deps    Deps
	log     zerolog.Logger
	typing  func() bool
	onFocus func(Focus)

	index   *Index
	filters *FilterSet
	focus   *FocusMachine

	visible     bool
	search      string
	sortField   SortField
	sortReverse bool

	filterBar []FilterButton
	rows      []Row
	applied   Focus
	renders   int
}

func New(deps Deps, opts ...Option) *Controller {
	c := &Controller{
		deps:   deps,
		log:    logging.Component("recent"),
		typing: func() bool { return false },
	}
	isMe := func(chat.UserID) bool { return false }
	if deps.People != nil {
		isMe = deps.People.IsMyUserID
	}
	c.index = NewIndex(isMe)
	c.filters = NewFilterSet(deps.Storage)
	c.focus = NewFocusMachine(c)
	for _, opt := range opts {
		opt(c)
	}
	if err := c.filters.Reload(); err != nil {
		c.log.Warn().Err(err).Msg("restore filters")
	}
	return c
}

// Reset drops all derived state. Persisted filters stay in storage.
func (c *Controller) Reset() {
	c.index.Clear()
	c.filters.Clear()
	c.focus.Reset()
	c.visible = false
	c.search = ""
	c.sortField = SortRecency
	c.sortReverse = false
	c.filterBar = nil
	c.rows = nil
	c.applied = Focus{}
}

// ProcessMessage updates the index without re-rendering.
func (c *Controller) ProcessMessage(msg chat.Message) bool {
	return c.index.Process(msg)
}

func (c *Controller) ProcessMessages(msgs []chat.Message) {
	for _, msg := range msgs {
		c.index.Process(msg)
	}
	c.CompleteRerender()
}

func (c *Controller) ReifyMessageID(oldID, newID chat.MessageID) bool {
	return c.index.Reify(oldID, newID)
}

// HandleTopicEdit rebuilds both sides of a topic rename or move. Only some
// messages may have moved, so the old topic is recomputed rather than
// dropped. A zero newStream means the stream did not change; an empty
// newTopic means the topic name did not change.
func (c *Controller) HandleTopicEdit(oldStream chat.StreamID, oldTopic, newTopic string, newStream chat.StreamID) {
	c.index.Delete(KeyFor(oldStream, oldTopic))
	c.ProcessMessages(c.deps.Messages.MessagesInTopic(oldStream, oldTopic))

	if newStream == 0 {
		newStream = oldStream
	}
	if newTopic == "" {
		newTopic = oldTopic
	}
	c.ProcessMessages(c.deps.Messages.MessagesInTopic(newStream, newTopic))
}

// HandleDeletedMessages recomputes every topic that lost a message.
func (c *Controller) HandleDeletedMessages(ids []chat.MessageID) {
	for _, ref := range c.deps.Messages.TopicsForMessageIDs(ids) {
		c.index.Delete(KeyFor(ref.StreamID, ref.Topic))
		c.ProcessMessages(c.deps.Messages.MessagesInTopic(ref.StreamID, ref.Topic))
	}
}

// UpdateTopicIsMuted refreshes one row after a mute change. It reports false
// for topics the view does not track.
func (c *Controller) UpdateTopicIsMuted(stream chat.StreamID, topic string) bool {
	key := KeyFor(stream, topic)
	if !c.index.Has(key) {
		return false
	}
	c.InplaceRerender(key)
	return true
}

func (c *Controller) UpdateTopicUnreadCount(ref chat.TopicRef) {
	c.InplaceRerender(KeyFor(ref.StreamID, ref.Topic))
}

// Topics returns every indexed topic, most recent first.
func (c *Controller) Topics() []TopicEntry {
	return c.index.Sorted()
}

func (c *Controller) Topic(key TopicKey) (TopicData, bool) {
	return c.index.Get(key)
}

// SetFilter applies a filter button press, persists it, and re-renders. A
// failed save still re-renders so the table matches the stored filters.
func (c *Controller) SetFilter(f Filter) error {
	err := c.filters.Toggle(f)
	if err != nil {
		c.log.Warn().Err(err).Str("filter", string(f)).Msg("set filter")
		if errors.Is(err, ErrUnknownFilter) {
			return err
		}
	}
	c.CompleteRerender()
	return err
}

func (c *Controller) Filters() []Filter {
	return c.filters.Active()
}

func (c *Controller) HasFilter(f Filter) bool {
	return c.filters.Has(f)
}

func (c *Controller) SetSearch(text string) {
	if text == c.search {
		return
	}
	c.search = text
	c.CompleteRerender()
}

func (c *Controller) Search() string {
	return c.search
}

// SetSort re-sorts the rendered table. Choosing the active field again
// reverses the direction.
func (c *Controller) SetSort(field SortField) {
	if field == c.sortField {
		c.sortReverse = !c.sortReverse
	} else {
		c.sortField = field
		c.sortReverse = false
	}
	if !c.visible {
		return
	}
	c.CompleteRerender()
}

func (c *Controller) Sort() (SortField, bool) {
	return c.sortField, c.sortReverse
}

func (c *Controller) IsVisible() bool {
	return c.visible
}

// Show switches from the conversation view to recent topics.
func (c *Controller) Show() {
	if nav := c.deps.Nav; nav != nil {
		nav.ActivateRecentTopics(ViewTitle)
	}
	c.visible = true
	if nav := c.deps.Nav; nav != nil {
		// Recent topics has no compose box; keep the draft and close it.
		nav.SaveDraft()
		nav.CancelCompose()
		nav.ResetNarrow()
	}
	c.CompleteRerender()
}

// Hide returns to the conversation view and blurs whatever had focus.
func (c *Controller) Hide() {
	c.visible = false
	c.ApplyFocus(Focus{})
	if nav := c.deps.Nav; nav != nil {
		nav.ActivateConversation()
	}
}

// CompleteRerender rebuilds the filter bar and the whole table, then revives
// focus. It does nothing while the view is hidden.
func (c *Controller) CompleteRerender() {
	if !c.visible {
		return
	}
	if err := c.filters.Reload(); err != nil {
		c.log.Warn().Err(err).Msg("reload filters")
	}
	c.filterBar = c.renderFilterBar()

	entries := c.index.Sorted()
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		if c.ShouldHide(entry.TopicData) {
			continue
		}
		row, ok := c.formatTopic(entry.TopicData)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	c.sortRows(rows)
	c.rows = rows
	c.renders++
	c.log.Debug().
		Int("topics", c.index.Len()).
		Int("rows", len(rows)).
		Str("sort", c.sortField.String()).
		Msg("complete rerender")

	c.focus.Revive(c.typing())
}

// InplaceRerender refreshes the row of one topic and shows or hides it per
// the filters, keeping the rest of the table (and its scroll position).
func (c *Controller) InplaceRerender(key TopicKey) bool {
	if !c.visible {
		return false
	}
	data, ok := c.index.Get(key)
	if !ok {
		return false
	}

	idx := c.rowIndex(key)
	if idx >= 0 {
		row, ok := c.formatTopic(data)
		if ok {
			row.Hidden = c.ShouldHide(data)
			c.rows[idx] = row
		} else {
			c.rows[idx].Hidden = true
		}
	}
	c.focus.Revive(c.typing())
	return true
}

// Rows returns the rendered rows that are not hidden, in display order.
// Table focus coordinates index into this slice.
func (c *Controller) Rows() []Row {
	out := make([]Row, 0, len(c.rows))
	for _, row := range c.rows {
		if !row.Hidden {
			out = append(out, row)
		}
	}
	return out
}

// FocusedRow returns the row holding table focus.
func (c *Controller) FocusedRow() (Row, int, bool) {
	f := c.focus.Current()
	if f.Kind != FocusTable {
		return Row{}, 0, false
	}
	rows := c.Rows()
	if f.Row < 0 || f.Row >= len(rows) {
		return Row{}, 0, false
	}
	return rows[f.Row], f.Col, true
}

func (c *Controller) FilterBar() []FilterButton {
	return append([]FilterButton(nil), c.filterBar...)
}

// Focus is the logical focus; AppliedFocus is what the rendered view shows.
func (c *Controller) Focus() Focus {
	return c.focus.Current()
}

func (c *Controller) AppliedFocus() Focus {
	return c.applied
}

// ChangeFocusedElement handles a navigation key that originated at origin.
// It returns true when the caller should suppress default key handling.
func (c *Controller) ChangeFocusedElement(origin Focus, key InputKey, cursor TextCursor) bool {
	if !c.visible {
		return false
	}
	return c.focus.Handle(origin, key, cursor)
}

// FocusSearch puts focus on the search box.
func (c *Controller) FocusSearch() {
	c.focus.SetDefaultFocus()
}

func (c *Controller) RenderCount() int {
	return c.renders
}

func (c *Controller) RenderedFilterButtons() []Filter {
	out := make([]Filter, 0, len(c.filterBar))
	for _, b := range c.filterBar {
		out = append(out, b.Filter)
	}
	return out
}

func (c *Controller) RenderedRowCount() int {
	n := 0
	for _, row := range c.rows {
		if !row.Hidden {
			n++
		}
	}
	return n
}

func (c *Controller) ApplyFocus(f Focus) {
	c.applied = f
	if c.onFocus != nil {
		c.onFocus(f)
	}
}

func (c *Controller) renderFilterBar() []FilterButton {
	bar := make([]FilterButton, 0, len(FilterButtons))
	for _, f := range FilterButtons {
		selected := c.filters.Has(f)
		if f == FilterAll {
			selected = c.filters.Len() == 0
		}
		bar = append(bar, FilterButton{Filter: f, Selected: selected})
	}
	return bar
}

// sortRows orders rows that arrive most recent first. Stream and topic sorts
// are stable, so equal names keep recency order.
func (c *Controller) sortRows(rows []Row) {
	switch c.sortField {
	case SortStream:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Stream < rows[j].Stream })
	case SortTopic:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Topic < rows[j].Topic })
	}
	if c.sortReverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
}

func (c *Controller) rowIndex(key TopicKey) int {
	for i := range c.rows {
		if c.rows[i].Key == key {
			return i
		}
	}
	return -1
}
