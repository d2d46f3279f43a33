package recent

import (
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/localstore"
)

const (
	me    chat.UserID = 1
	alice chat.UserID = 2
	bob   chat.UserID = 3

	general chat.StreamID = 10
	design  chat.StreamID = 20
)

type navCall string

type stubNav struct {
	calls []navCall
	title string
}

func (n *stubNav) ActivateRecentTopics(title string) {
	n.title = title
	n.calls = append(n.calls, "recent")
}
func (n *stubNav) ActivateConversation() { n.calls = append(n.calls, "conversation") }
func (n *stubNav) SaveDraft()            { n.calls = append(n.calls, "save_draft") }
func (n *stubNav) CancelCompose()        { n.calls = append(n.calls, "cancel_compose") }
func (n *stubNav) ResetNarrow()          { n.calls = append(n.calls, "reset_narrow") }

type fixture struct {
	realm   *chat.Realm
	storage *localstore.Memory
	nav     *stubNav
	ctrl    *Controller
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func newFixture(t testingT) *fixture {
	t.Helper()
	realm := chat.NewRealm(me)
	realm.Streams.Upsert(chat.Subscription{StreamID: general, Name: "general", Color: "#76ce90", Subscribed: true})
	realm.Streams.Upsert(chat.Subscription{StreamID: design, Name: "design", Color: "#a6c7e5", Subscribed: true})
	realm.People.Add(chat.Person{UserID: me, FullName: "Me Myself"})
	realm.People.Add(chat.Person{UserID: alice, FullName: "Alice Liddell"})
	realm.People.Add(chat.Person{UserID: bob, FullName: "Bob"})

	f := &fixture{
		realm:   realm,
		storage: localstore.NewMemory(),
		nav:     &stubNav{},
	}
	f.ctrl = New(DepsFromRealm(realm, f.storage, f.nav))
	require.Equal(t, 0, f.ctrl.index.Len())
	return f
}

func streamMsg(id chat.MessageID, stream chat.StreamID, topic string, sender chat.UserID) chat.Message {
	return chat.Message{
		ID:        id,
		Type:      chat.MessageTypeStream,
		StreamID:  stream,
		Topic:     topic,
		SenderID:  sender,
		Timestamp: 1_770_000_000 + int64(id),
	}
}

// add stores messages in the realm the way the event feed does, then indexes
// them.
func (f *fixture) add(msgs ...chat.Message) {
	for _, msg := range msgs {
		f.realm.Messages.Add(msg)
	}
	f.ctrl.ProcessMessages(msgs)
}

func rowTopics(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Topic)
	}
	return out
}
