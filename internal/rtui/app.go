// Package rtui is the rtopics terminal client: the recent topics view, a
// conversation view narrowed to a stream or topic, and a compose box.
package rtui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/config"
	"github.com/tOgg1/rtopics/internal/feed"
	"github.com/tOgg1/rtopics/internal/logging"
	"github.com/tOgg1/rtopics/internal/recent"
	"github.com/tOgg1/rtopics/internal/rtui/styles"
)

const (
	defaultRefreshInterval = 30 * time.Second
	searchCharLimit        = 120
	composeCharLimit       = 2000
)

type ViewID string

const (
	ViewRecent       ViewID = "recent"
	ViewConversation ViewID = "conversation"
)

type Config struct {
	Theme           string
	RefreshInterval time.Duration
	SelfID          chat.UserID

	// Storage persists client preferences such as the recent topics filters.
	Storage recent.Storage
	// Follower streams feed events; nil runs without a feed.
	Follower *feed.Follower
	// Context remembers the last view and narrow; nil disables it.
	Context *config.ContextStore

	Logger *zerolog.Logger
}

type narrow struct {
	streamID chat.StreamID
	stream   string
	topic    string
}

func (n narrow) isZero() bool { return n.streamID == 0 }

func (n narrow) title() string {
	switch {
	case n.isZero():
		return "All messages"
	case n.topic == "":
		return "#" + n.stream
	default:
		return "#" + n.stream + " > " + n.topic
	}
}

type composeState struct {
	active bool
	input  textinput.Model
}

type Model struct {
	realm  *chat.Realm
	recent *recent.Controller
	theme  styles.Theme
	log    zerolog.Logger

	follower *feed.Follower
	events   <-chan feed.Event
	cancel   func()

	ctxStore        *config.ContextStore
	refreshInterval time.Duration
	now             func() time.Time

	active  ViewID
	title   string
	narrow  narrow
	search  textinput.Model
	compose composeState
	draft   string

	width       int
	height      int
	showHelp    bool
	tableOffset int
	convScroll  int
	searchLineY int
	filterSpans []filterSpan

	status    string
	statusErr bool
	applied   int
	skipped   int
}

type feedEventMsg struct {
	ev feed.Event
}

type feedClosedMsg struct{}

type refreshTickMsg struct{}

func NewModel(cfg Config) (*Model, error) {
	theme := strings.TrimSpace(cfg.Theme)
	if theme == "" {
		theme = "default"
	}
	if _, ok := styles.Themes[theme]; !ok {
		return nil, fmt.Errorf("invalid theme %q", cfg.Theme)
	}
	log := logging.Component("rtui")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}

	search := textinput.New()
	search.Placeholder = "Search topics"
	search.Prompt = "/ "
	search.CharLimit = searchCharLimit

	composeInput := textinput.New()
	composeInput.Placeholder = "Message"
	composeInput.CharLimit = composeCharLimit

	m := &Model{
		realm:           chat.NewRealm(cfg.SelfID),
		theme:           styles.Lookup(theme),
		log:             log,
		follower:        cfg.Follower,
		ctxStore:        cfg.Context,
		refreshInterval: refresh,
		now:             time.Now,
		active:          ViewConversation,
		search:          search,
		compose:         composeState{input: composeInput},
	}
	m.title = m.narrow.title()
	m.recent = recent.New(
		recent.DepsFromRealm(m.realm, cfg.Storage, m),
		recent.WithLogger(log.With().Str("view", "recent").Logger()),
		recent.WithTypingProbe(m.isTyping),
		recent.WithFocusHook(m.applyFocus),
	)
	m.restoreContext()
	return m, nil
}

func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	return err
}

func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) Realm() *chat.Realm { return m.realm }

func (m *Model) Recent() *recent.Controller { return m.recent }

func (m *Model) ActiveView() ViewID { return m.active }

func (m *Model) Title() string { return m.title }

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshTickCmd()}
	if m.follower != nil && m.events == nil {
		m.events, m.cancel = m.follower.Subscribe(context.Background())
		cmds = append(cmds, m.waitForEventCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case feedEventMsg:
		m.applyEvent(typed.ev)
		return m, m.waitForEventCmd()
	case feedClosedMsg:
		m.setStatus("feed closed", false)
		return m, nil
	case refreshTickMsg:
		// Relative times are recomputed on every View.
		return m, m.refreshTickCmd()
	case tea.MouseMsg:
		return m, m.handleMouse(typed)
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	}
	return m, nil
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	m.searchLineY = lipgloss.Height(header)

	var body string
	switch {
	case m.showHelp:
		body = m.renderHelpOverlay(m.width, contentHeight)
	case m.active == ViewRecent:
		body = m.renderRecentView(m.width, contentHeight)
	default:
		body = m.renderConversationView(m.width, contentHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// ActivateRecentTopics switches the main pane to recent topics.
func (m *Model) ActivateRecentTopics(title string) {
	m.active = ViewRecent
	m.title = title
	m.tableOffset = 0
	m.saveContext()
}

// ActivateConversation restores the conversation pane and its title.
func (m *Model) ActivateConversation() {
	m.active = ViewConversation
	m.title = m.narrow.title()
	m.convScroll = 0
	m.saveContext()
}

// SaveDraft keeps unsent compose text for the next time compose opens.
func (m *Model) SaveDraft() {
	if !m.compose.active {
		return
	}
	if text := strings.TrimSpace(m.compose.input.Value()); text != "" {
		m.draft = m.compose.input.Value()
	}
}

func (m *Model) CancelCompose() {
	m.compose.active = false
	m.compose.input.Blur()
	m.compose.input.Reset()
}

func (m *Model) ResetNarrow() {
	m.narrow = narrow{}
}

func (m *Model) isTyping() bool {
	return m.search.Focused() || m.compose.active
}

// applyFocus mirrors the logical focus onto the widgets: only the search
// focus state lives in a widget, the rest is drawn from AppliedFocus.
func (m *Model) applyFocus(f recent.Focus) {
	if f.Kind == recent.FocusSearch {
		m.search.Focus()
		return
	}
	m.search.Blur()
}

func (m *Model) openRecentTopics() {
	m.recent.Show()
}

// narrowTo leaves recent topics for a conversation narrowed to a stream or
// topic.
func (m *Model) narrowTo(streamID chat.StreamID, stream, topic string) {
	m.narrow = narrow{streamID: streamID, stream: stream, topic: topic}
	if m.recent.IsVisible() {
		m.recent.Hide()
		return
	}
	m.ActivateConversation()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) saveContext() {
	if m.ctxStore == nil {
		return
	}
	ctx, err := m.ctxStore.Load()
	if err != nil {
		m.log.Debug().Err(err).Msg("load context before save")
		ctx = &config.Context{}
	}
	switch {
	case m.active == ViewRecent:
		ctx.SetView(config.ViewRecentTopics)
		ctx.ClearNarrow()
	case m.narrow.isZero():
		ctx.SetView(config.ViewConversation)
		ctx.ClearNarrow()
	default:
		ctx.SetNarrow(int64(m.narrow.streamID), m.narrow.stream, m.narrow.topic)
	}
	if err := m.ctxStore.Save(ctx); err != nil {
		m.log.Warn().Err(err).Msg("save context")
	}
}

func (m *Model) restoreContext() {
	var ctx *config.Context
	if m.ctxStore != nil {
		loaded, err := m.ctxStore.Load()
		if err != nil {
			m.log.Warn().Err(err).Msg("load context")
		} else {
			ctx = loaded
		}
	}
	if ctx != nil && ctx.View == config.ViewConversation {
		m.narrow = narrow{streamID: chat.StreamID(ctx.StreamID), stream: ctx.Stream, topic: ctx.Topic}
		m.ActivateConversation()
		return
	}
	m.openRecentTopics()
}

func (m *Model) applyEvent(ev feed.Event) {
	if err := feed.Apply(m.realm, m.recent, ev); err != nil {
		m.skipped++
		m.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("apply feed event")
		return
	}
	m.applied++
}

func (m *Model) waitForEventCmd() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return feedEventMsg{ev: ev}
	}
}

func (m *Model) refreshTickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// sendLocalEcho shows a composed message immediately under a provisional id.
// A later reify event from the feed swaps in the server id.
func (m *Model) sendLocalEcho(content string) (chat.Message, bool) {
	if m.narrow.isZero() || m.narrow.topic == "" {
		m.setStatus("narrow to a topic to send", true)
		return chat.Message{}, false
	}
	msg := chat.Message{
		ID:        m.nextLocalID(),
		Type:      chat.MessageTypeStream,
		StreamID:  m.narrow.streamID,
		Stream:    m.narrow.stream,
		Topic:     m.narrow.topic,
		SenderID:  m.realm.People.Self(),
		Timestamp: m.now().Unix(),
		Content:   content,
	}
	m.realm.Messages.Add(msg)
	m.recent.ProcessMessages([]chat.Message{msg})
	return msg, true
}

func (m *Model) nextLocalID() chat.MessageID {
	all := m.realm.Messages.All()
	if len(all) == 0 {
		return 0.01
	}
	last := float64(all[len(all)-1].ID)
	next := math.Floor(last) + 0.01
	if next <= last {
		next = last + 0.01
	}
	return chat.MessageID(next)
}
