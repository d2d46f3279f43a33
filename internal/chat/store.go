package chat

import (
	"sort"
)

// Store is the client-side message store: every message the client has
// fetched or received, keyed by id. Deleted messages leave a tombstone so
// callers can still resolve which topic they belonged to.
type Store struct {
	byID    map[MessageID]*Message
	deleted map[MessageID]TopicRef
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[MessageID]*Message),
		deleted: make(map[MessageID]TopicRef),
	}
}

// Add inserts msg, replacing any message with the same id.
func (s *Store) Add(msg Message) {
	stored := msg
	s.byID[msg.ID] = &stored
	delete(s.deleted, msg.ID)
}

func (s *Store) Get(id MessageID) (Message, bool) {
	msg, ok := s.byID[id]
	if !ok {
		return Message{}, false
	}
	return *msg, true
}

func (s *Store) Len() int {
	return len(s.byID)
}

// Reify re-keys a locally echoed message under its server-assigned id.
func (s *Store) Reify(oldID, newID MessageID) bool {
	msg, ok := s.byID[oldID]
	if !ok {
		return false
	}
	delete(s.byID, oldID)
	msg.ID = newID
	s.byID[newID] = msg
	return true
}

// Move relocates the given messages to a new stream and/or topic. A zero
// stream keeps each message in its current stream. It returns the messages
// as they were before the move.
func (s *Store) Move(ids []MessageID, stream StreamID, streamName, topic string) []Message {
	moved := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, ok := s.byID[id]
		if !ok || !msg.IsStream() {
			continue
		}
		moved = append(moved, *msg)
		if stream != 0 {
			msg.StreamID = stream
			if streamName != "" {
				msg.Stream = streamName
			}
		}
		if topic != "" {
			msg.Topic = topic
		}
	}
	return moved
}

// Delete removes messages and records a tombstone for each.
func (s *Store) Delete(ids []MessageID) int {
	removed := 0
	for _, id := range ids {
		msg, ok := s.byID[id]
		if !ok {
			continue
		}
		if msg.IsStream() {
			s.deleted[id] = msg.TopicRef()
		}
		delete(s.byID, id)
		removed++
	}
	return removed
}

// MessagesInTopic returns the live messages of a topic in id order.
func (s *Store) MessagesInTopic(stream StreamID, topic string) []Message {
	out := make([]Message, 0)
	for _, msg := range s.byID {
		if !msg.IsStream() || msg.StreamID != stream || !SameTopic(msg.Topic, topic) {
			continue
		}
		out = append(out, *msg)
	}
	sortMessages(out)
	return out
}

// TopicsForMessageIDs resolves the distinct topics the given ids belong to,
// consulting tombstones for deleted messages.
func (s *Store) TopicsForMessageIDs(ids []MessageID) []TopicRef {
	seen := make(map[string]struct{}, len(ids))
	out := make([]TopicRef, 0, len(ids))
	for _, id := range ids {
		var ref TopicRef
		if msg, ok := s.byID[id]; ok {
			if !msg.IsStream() {
				continue
			}
			ref = msg.TopicRef()
		} else if tomb, ok := s.deleted[id]; ok {
			ref = tomb
		} else {
			continue
		}
		key := topicKey(ref.StreamID, ref.Topic)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// All returns every live message in id order.
func (s *Store) All() []Message {
	out := make([]Message, 0, len(s.byID))
	for _, msg := range s.byID {
		out = append(out, *msg)
	}
	sortMessages(out)
	return out
}

func sortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].ID < msgs[j].ID
	})
}
