package chat

// Unread tracks which stream messages the viewing user has not read yet.
type Unread struct {
	byTopic map[string]map[MessageID]struct{}
	topicOf map[MessageID]string
	refOf   map[MessageID]TopicRef
}

func NewUnread() *Unread {
	return &Unread{
		byTopic: make(map[string]map[MessageID]struct{}),
		topicOf: make(map[MessageID]string),
		refOf:   make(map[MessageID]TopicRef),
	}
}

// Add marks a stream message unread.
func (u *Unread) Add(msg Message) {
	if !msg.IsStream() {
		return
	}
	u.remove(msg.ID)
	key := topicKey(msg.StreamID, msg.Topic)
	ids, ok := u.byTopic[key]
	if !ok {
		ids = make(map[MessageID]struct{})
		u.byTopic[key] = ids
	}
	ids[msg.ID] = struct{}{}
	u.topicOf[msg.ID] = key
	u.refOf[msg.ID] = msg.TopicRef()
}

// MarkRead clears the given ids and returns the topics whose counts changed.
func (u *Unread) MarkRead(ids []MessageID) []TopicRef {
	seen := make(map[string]struct{})
	out := make([]TopicRef, 0)
	for _, id := range ids {
		key, ok := u.topicOf[id]
		if !ok {
			continue
		}
		ref := u.refOf[id]
		u.remove(id)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// Remove drops ids without reporting, used for deleted messages.
func (u *Unread) Remove(ids []MessageID) {
	for _, id := range ids {
		u.remove(id)
	}
}

// Reify moves an unread marker from a provisional id to its final id.
func (u *Unread) Reify(oldID, newID MessageID) {
	ref, ok := u.refOf[oldID]
	if !ok {
		return
	}
	u.remove(oldID)
	u.Add(Message{ID: newID, Type: MessageTypeStream, StreamID: ref.StreamID, Topic: ref.Topic})
}

// Relocate follows a message that moved to another stream or topic.
func (u *Unread) Relocate(msg Message) {
	if _, ok := u.topicOf[msg.ID]; !ok {
		return
	}
	u.Add(msg)
}

func (u *Unread) IsUnread(id MessageID) bool {
	_, ok := u.topicOf[id]
	return ok
}

func (u *Unread) NumUnreadForTopic(stream StreamID, topic string) int {
	return len(u.byTopic[topicKey(stream, topic)])
}

func (u *Unread) remove(id MessageID) {
	key, ok := u.topicOf[id]
	if !ok {
		return
	}
	delete(u.topicOf, id)
	delete(u.refOf, id)
	if ids := u.byTopic[key]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(u.byTopic, key)
		}
	}
}
