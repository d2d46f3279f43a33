package recent

import "github.com/tOgg1/rtopics/internal/chat"

type MessageStore interface {
	Get(id chat.MessageID) (chat.Message, bool)
	MessagesInTopic(stream chat.StreamID, topic string) []chat.Message
	TopicsForMessageIDs(ids []chat.MessageID) []chat.TopicRef
}

type StreamDirectory interface {
	Get(id chat.StreamID) (chat.Subscription, bool)
	IsMuted(id chat.StreamID) bool
}

type TopicMutes interface {
	IsTopicMuted(stream chat.StreamID, topic string) bool
}

type UnreadCounter interface {
	NumUnreadForTopic(stream chat.StreamID, topic string) int
}

type SenderHistory interface {
	TopicRecentSenders(stream chat.StreamID, topic string) []chat.UserID
}

type PeopleDirectory interface {
	IsMyUserID(id chat.UserID) bool
	SenderInfo(ids []chat.UserID) []chat.Person
}

// Navigator is the part of the surrounding application the view switches
// against: the sibling conversation view, page chrome, and compose.
type Navigator interface {
	ActivateRecentTopics(title string)
	ActivateConversation()
	SaveDraft()
	CancelCompose()
	ResetNarrow()
}

// Deps are the collaborators a Controller reads from. Nav may be nil.
type Deps struct {
	Messages MessageStore
	Streams  StreamDirectory
	Muted    TopicMutes
	Unread   UnreadCounter
	Senders  SenderHistory
	People   PeopleDirectory
	Storage  Storage
	Nav      Navigator
}

// DepsFromRealm wires a realm's directories as collaborators.
func DepsFromRealm(realm *chat.Realm, storage Storage, nav Navigator) Deps {
	return Deps{
		Messages: realm.Messages,
		Streams:  realm.Streams,
		Muted:    realm.Muted,
		Unread:   realm.Unread,
		Senders:  realm.Senders,
		People:   realm.People,
		Storage:  storage,
		Nav:      nav,
	}
}
