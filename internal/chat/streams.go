package chat

import "strings"

// Subscription is the client's view of one stream.
type Subscription struct {
	StreamID   StreamID `json:"stream_id"`
	Name       string   `json:"name"`
	Color      string   `json:"color,omitempty"`
	Subscribed bool     `json:"subscribed"`
	Muted      bool     `json:"is_muted,omitempty"`
	InviteOnly bool     `json:"invite_only,omitempty"`
	WebPublic  bool     `json:"is_web_public,omitempty"`
}

// Streams is the stream directory. A stream that is absent has been
// deactivated or was never visible to the user.
type Streams struct {
	subs map[StreamID]Subscription
}

func NewStreams() *Streams {
	return &Streams{subs: make(map[StreamID]Subscription)}
}

func (s *Streams) Upsert(sub Subscription) {
	sub.Name = strings.TrimSpace(sub.Name)
	s.subs[sub.StreamID] = sub
}

func (s *Streams) Remove(id StreamID) bool {
	if _, ok := s.subs[id]; !ok {
		return false
	}
	delete(s.subs, id)
	return true
}

func (s *Streams) Get(id StreamID) (Subscription, bool) {
	sub, ok := s.subs[id]
	return sub, ok
}

func (s *Streams) IsMuted(id StreamID) bool {
	return s.subs[id].Muted
}

// SetMuted reports whether the stream was known.
func (s *Streams) SetMuted(id StreamID, muted bool) bool {
	sub, ok := s.subs[id]
	if !ok {
		return false
	}
	sub.Muted = muted
	s.subs[id] = sub
	return true
}

// MutedTopics tracks per-topic mutes independently of stream mutes.
type MutedTopics struct {
	set map[string]struct{}
}

func NewMutedTopics() *MutedTopics {
	return &MutedTopics{set: make(map[string]struct{})}
}

func (m *MutedTopics) IsTopicMuted(stream StreamID, topic string) bool {
	_, ok := m.set[topicKey(stream, topic)]
	return ok
}

func (m *MutedTopics) SetTopicMuted(stream StreamID, topic string, muted bool) {
	key := topicKey(stream, topic)
	if muted {
		m.set[key] = struct{}{}
		return
	}
	delete(m.set, key)
}
