package recent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/localstore"
)

func TestControllerRendersNothingWhileHidden(t *testing.T) {
	f := newFixture(t)
	f.add(streamMsg(1, general, "lunch", alice))
	require.Equal(t, 0, f.ctrl.RenderCount())
	require.Empty(t, f.ctrl.Rows())
	require.Len(t, f.ctrl.Topics(), 1)
}

func TestControllerShowSwitchesViews(t *testing.T) {
	f := newFixture(t)
	f.add(streamMsg(1, general, "lunch", alice))

	f.ctrl.Show()
	require.True(t, f.ctrl.IsVisible())
	require.Equal(t, ViewTitle, f.nav.title)
	require.Equal(t, []navCall{"recent", "save_draft", "cancel_compose", "reset_narrow"}, f.nav.calls)
	require.Equal(t, []string{"lunch"}, rowTopics(f.ctrl.Rows()))
	require.Equal(t, SearchFocus(), f.ctrl.AppliedFocus())

	f.ctrl.Hide()
	require.False(t, f.ctrl.IsVisible())
	require.Equal(t, Focus{}, f.ctrl.AppliedFocus())
	require.Equal(t, navCall("conversation"), f.nav.calls[len(f.nav.calls)-1])
}

func TestControllerRowsOrderedByRecency(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(
		streamMsg(5, general, "lunch", alice),
		streamMsg(3, design, "mockups", bob),
		streamMsg(8, general, "deploy", me),
	)
	require.Equal(t, []string{"deploy", "lunch", "mockups"}, rowTopics(f.ctrl.Rows()))

	row := f.ctrl.Rows()[0]
	require.Equal(t, "general", row.Stream)
	require.Equal(t, "#76ce90", row.StreamColor)
	require.True(t, row.Participated)
	require.Equal(t, chat.MessageID(8), row.LastMsgID)
}

func TestControllerSortByFieldAndReverse(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(
		streamMsg(1, general, "b", alice),
		streamMsg(2, design, "a", alice),
		streamMsg(3, general, "c", alice),
	)

	f.ctrl.SetSort(SortTopic)
	require.Equal(t, []string{"a", "b", "c"}, rowTopics(f.ctrl.Rows()))
	f.ctrl.SetSort(SortTopic)
	require.Equal(t, []string{"c", "b", "a"}, rowTopics(f.ctrl.Rows()))

	// Equal stream names keep recency order.
	f.ctrl.SetSort(SortStream)
	require.Equal(t, []string{"a", "c", "b"}, rowTopics(f.ctrl.Rows()))

	field, reverse := f.ctrl.Sort()
	require.Equal(t, SortStream, field)
	require.False(t, reverse)
}

func TestControllerScenarioReify(t *testing.T) {
	f := newFixture(t)
	f.add(streamMsg(5, general, "lunch", alice), streamMsg(3, general, "lunch", alice), streamMsg(8, general, "lunch", alice))
	data, _ := f.ctrl.Topic(KeyFor(general, "lunch"))
	require.Equal(t, chat.MessageID(8), data.LastMsgID)

	require.True(t, f.ctrl.ReifyMessageID(8, 12))
	data, _ = f.ctrl.Topic(KeyFor(general, "lunch"))
	require.Equal(t, chat.MessageID(12), data.LastMsgID)
}

func TestControllerScenarioUnreadFilter(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice))

	require.NoError(t, f.ctrl.SetFilter(FilterUnread))
	require.Empty(t, f.ctrl.Rows())

	require.NoError(t, f.ctrl.SetFilter(FilterAll))
	require.Equal(t, []string{"lunch"}, rowTopics(f.ctrl.Rows()))
}

func TestControllerFilterBarSelection(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()

	bar := f.ctrl.FilterBar()
	require.Len(t, bar, len(FilterButtons))
	require.Equal(t, FilterButton{Filter: FilterAll, Selected: true}, bar[0])

	require.NoError(t, f.ctrl.SetFilter(FilterParticipated))
	bar = f.ctrl.FilterBar()
	require.False(t, bar[0].Selected)
	require.True(t, bar[2].Selected)
	require.Equal(t, []Filter{FilterParticipated}, f.ctrl.Filters())
}

// staleSaveStorage keeps values in memory but reports the last failed flush,
// the way the file store does after a debounced save fails.
type staleSaveStorage struct {
	*localstore.Memory
}

func (s staleSaveStorage) Set(key string, value any) error {
	if err := s.Memory.Set(key, value); err != nil {
		return err
	}
	return errDiskFull
}

func TestControllerSetFilterRerendersWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	deps := DepsFromRealm(f.realm, staleSaveStorage{localstore.NewMemory()}, f.nav)
	ctrl := New(deps)
	ctrl.Show()
	f.realm.Messages.Add(streamMsg(1, general, "lunch", alice))
	ctrl.ProcessMessages([]chat.Message{streamMsg(1, general, "lunch", alice)})
	ctrl.CompleteRerender()
	require.Equal(t, []string{"lunch"}, rowTopics(ctrl.Rows()))
	before := ctrl.RenderCount()

	err := ctrl.SetFilter(FilterUnread)
	require.ErrorIs(t, err, errDiskFull)
	require.Equal(t, before+1, ctrl.RenderCount())
	require.True(t, ctrl.HasFilter(FilterUnread))
	require.True(t, ctrl.FilterBar()[1].Selected)
	require.Empty(t, ctrl.Rows())
}

func TestControllerSetFilterUnknownSkipsRerender(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	before := f.ctrl.RenderCount()

	require.ErrorIs(t, f.ctrl.SetFilter(Filter("bogus")), ErrUnknownFilter)
	require.Equal(t, before, f.ctrl.RenderCount())
}

func TestControllerRestoresPersistedFilters(t *testing.T) {
	storage := localstore.NewMemory()
	require.NoError(t, storage.Set(FiltersStorageKey, []string{"unread"}))

	realm := chat.NewRealm(me)
	ctrl := New(DepsFromRealm(realm, storage, nil))
	require.True(t, ctrl.HasFilter(FilterUnread))
}

func TestControllerCompleteRerenderReloadsFilters(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice))

	// Another instance writes the shared entry.
	require.NoError(t, f.storage.Set(FiltersStorageKey, []string{"unread"}))
	f.ctrl.CompleteRerender()
	require.True(t, f.ctrl.HasFilter(FilterUnread))
	require.Empty(t, f.ctrl.Rows())
}

func TestControllerTopicEditMovesPartOfTopic(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(
		streamMsg(1, general, "lunch", alice),
		streamMsg(2, general, "lunch", me),
		streamMsg(3, general, "lunch", bob),
	)

	f.realm.Messages.Move([]chat.MessageID{3}, design, "design", "food")
	f.ctrl.HandleTopicEdit(general, "lunch", "food", design)

	lunch, ok := f.ctrl.Topic(KeyFor(general, "lunch"))
	require.True(t, ok)
	require.Equal(t, chat.MessageID(2), lunch.LastMsgID)
	require.True(t, lunch.Participated)

	food, ok := f.ctrl.Topic(KeyFor(design, "food"))
	require.True(t, ok)
	require.Equal(t, chat.MessageID(3), food.LastMsgID)
	require.False(t, food.Participated)
	require.Equal(t, []string{"food", "lunch"}, rowTopics(f.ctrl.Rows()))
}

func TestControllerTopicEditWholeTopicRename(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice), streamMsg(2, general, "lunch", bob))

	f.realm.Messages.Move([]chat.MessageID{1, 2}, 0, "", "brunch")
	f.ctrl.HandleTopicEdit(general, "lunch", "brunch", 0)

	require.False(t, f.ctrl.index.Has(KeyFor(general, "lunch")))
	require.Equal(t, []string{"brunch"}, rowTopics(f.ctrl.Rows()))
}

func TestControllerDeletedMessagesRecompute(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(
		streamMsg(1, general, "lunch", alice),
		streamMsg(2, general, "lunch", bob),
		streamMsg(3, design, "mockups", bob),
	)

	f.realm.Messages.Delete([]chat.MessageID{2, 3})
	f.ctrl.HandleDeletedMessages([]chat.MessageID{2, 3})

	lunch, ok := f.ctrl.Topic(KeyFor(general, "lunch"))
	require.True(t, ok)
	require.Equal(t, chat.MessageID(1), lunch.LastMsgID)
	require.False(t, f.ctrl.index.Has(KeyFor(design, "mockups")))
	require.Equal(t, []string{"lunch"}, rowTopics(f.ctrl.Rows()))
}

func TestControllerInplaceRerenderHidesMutedRow(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice), streamMsg(2, design, "mockups", bob))
	renders := f.ctrl.RenderCount()

	f.realm.Muted.SetTopicMuted(general, "lunch", true)
	require.True(t, f.ctrl.UpdateTopicIsMuted(general, "lunch"))
	require.Equal(t, renders, f.ctrl.RenderCount())
	require.Equal(t, []string{"mockups"}, rowTopics(f.ctrl.Rows()))

	require.NoError(t, f.ctrl.SetFilter(FilterIncludeMuted))
	rows := f.ctrl.Rows()
	require.Equal(t, []string{"mockups", "lunch"}, rowTopics(rows))
	require.True(t, rows[1].Muted)
	require.True(t, rows[1].TopicMuted)

	require.False(t, f.ctrl.UpdateTopicIsMuted(general, "unknown"))
}

func TestControllerInplaceRerenderUpdatesUnreadCount(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	msg := streamMsg(1, general, "lunch", alice)
	f.realm.Unread.Add(msg)
	f.add(msg)
	require.Equal(t, 1, f.ctrl.Rows()[0].UnreadCount)

	refs := f.realm.Unread.MarkRead([]chat.MessageID{1})
	require.Len(t, refs, 1)
	f.ctrl.UpdateTopicUnreadCount(refs[0])
	require.Equal(t, 0, f.ctrl.Rows()[0].UnreadCount)
}

func TestControllerRowSenders(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	var msgs []chat.Message
	for i, sender := range []chat.UserID{alice, bob, 40, 41, 42, me} {
		msgs = append(msgs, streamMsg(chat.MessageID(i+1), general, "lunch", sender))
	}
	f.add(msgs...)

	row := f.ctrl.Rows()[0]
	require.Len(t, row.Senders, MaxAvatars)
	require.Equal(t, me, row.Senders[0].UserID)
	require.Equal(t, "user40", row.Senders[3].FullName)
	require.Equal(t, 2, row.OtherSenders)
}

func TestControllerFocusNavigation(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice), streamMsg(2, general, "deploy", bob))

	require.False(t, f.ctrl.ChangeFocusedElement(f.ctrl.Focus(), KeyVimDown, TextCursor{}))
	require.True(t, f.ctrl.ChangeFocusedElement(f.ctrl.Focus(), KeyDownArrow, TextCursor{}))
	require.True(t, f.ctrl.ChangeFocusedElement(f.ctrl.Focus(), KeyDownArrow, TextCursor{}))

	row, col, ok := f.ctrl.FocusedRow()
	require.True(t, ok)
	require.Equal(t, "lunch", row.Topic)
	require.Equal(t, ColTopic, col)
	require.Equal(t, TableFocus(1, ColTopic), f.ctrl.AppliedFocus())

	// A filter that empties the table drops focus back to search.
	require.NoError(t, f.ctrl.SetFilter(FilterUnread))
	require.Equal(t, SearchFocus(), f.ctrl.Focus())
	_, _, ok = f.ctrl.FocusedRow()
	require.False(t, ok)
}

func TestControllerIgnoresKeysWhileHidden(t *testing.T) {
	f := newFixture(t)
	require.False(t, f.ctrl.ChangeFocusedElement(SearchFocus(), KeyTab, TextCursor{}))
}

func TestControllerRevivalSkippedWhileTyping(t *testing.T) {
	realm := chat.NewRealm(me)
	realm.Streams.Upsert(chat.Subscription{StreamID: general, Name: "general", Subscribed: true})
	var applied []Focus
	ctrl := New(
		DepsFromRealm(realm, localstore.NewMemory(), nil),
		WithTypingProbe(func() bool { return true }),
		WithFocusHook(func(f Focus) { applied = append(applied, f) }),
	)
	ctrl.Show()
	require.Empty(t, applied)
}

func TestControllerReset(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Show()
	f.add(streamMsg(1, general, "lunch", alice))
	require.NoError(t, f.ctrl.SetFilter(FilterParticipated))
	f.ctrl.SetSearch("lun")

	f.ctrl.Reset()
	require.False(t, f.ctrl.IsVisible())
	require.Empty(t, f.ctrl.Topics())
	require.Equal(t, 0, f.ctrl.index.Len())
	require.Empty(t, f.ctrl.Filters())
	require.Equal(t, "", f.ctrl.Search())
	require.Equal(t, SearchFocus(), f.ctrl.Focus())

	// Storage keeps the filters for the next session.
	f.ctrl.Show()
	require.Equal(t, []Filter{FilterParticipated}, f.ctrl.Filters())
}
