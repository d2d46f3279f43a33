package chat

// Realm bundles the directories a client keeps for one organization.
type Realm struct {
	Messages *Store
	Streams  *Streams
	Muted    *MutedTopics
	Unread   *Unread
	Senders  *SenderHistory
	People   *People
}

func NewRealm(self UserID) *Realm {
	store := NewStore()
	return &Realm{
		Messages: store,
		Streams:  NewStreams(),
		Muted:    NewMutedTopics(),
		Unread:   NewUnread(),
		Senders:  NewSenderHistory(store),
		People:   NewPeople(self),
	}
}
