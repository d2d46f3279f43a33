package chat

import "sort"

// SenderHistory derives per-topic sender lists from the message store.
type SenderHistory struct {
	store *Store
}

func NewSenderHistory(store *Store) *SenderHistory {
	return &SenderHistory{store: store}
}

// TopicRecentSenders lists distinct senders of a topic ordered by their most
// recent message, oldest first.
func (h *SenderHistory) TopicRecentSenders(stream StreamID, topic string) []UserID {
	latest := make(map[UserID]MessageID)
	for _, msg := range h.store.MessagesInTopic(stream, topic) {
		if prev, ok := latest[msg.SenderID]; !ok || msg.ID > prev {
			latest[msg.SenderID] = msg.ID
		}
	}
	out := make([]UserID, 0, len(latest))
	for id := range latest {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return latest[out[i]] < latest[out[j]]
	})
	return out
}
