// Package recent maintains the recent topics view: an index of topics built
// from incoming messages, the user's filters, keyboard focus, and the rendered
// table derived from them.
package recent

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tOgg1/rtopics/internal/chat"
)

// TopicKey identifies a topic as "<stream id>:<lower-cased topic>".
type TopicKey string

func KeyFor(stream chat.StreamID, topic string) TopicKey {
	return TopicKey(strconv.FormatInt(int64(stream), 10) + ":" + strings.ToLower(topic))
}

type TopicData struct {
	// LastMsgID may briefly hold a local-echo id until ReifyMessageID runs.
	LastMsgID    chat.MessageID
	Participated bool
}

type TopicEntry struct {
	Key TopicKey
	TopicData
}

// Index aggregates messages per topic.
type Index struct {
	topics map[TopicKey]*TopicData
	isMe   func(chat.UserID) bool
}

func NewIndex(isMe func(chat.UserID) bool) *Index {
	if isMe == nil {
		isMe = func(chat.UserID) bool { return false }
	}
	return &Index{
		topics: make(map[TopicKey]*TopicData),
		isMe:   isMe,
	}
}

// Process folds one message into the index. Non-stream messages are ignored.
func (ix *Index) Process(msg chat.Message) bool {
	if !msg.IsStream() {
		return false
	}
	key := KeyFor(msg.StreamID, msg.Topic)
	data, ok := ix.topics[key]
	if !ok {
		data = &TopicData{LastMsgID: -1}
		ix.topics[key] = data
	}
	if data.LastMsgID < msg.ID {
		data.LastMsgID = msg.ID
	}
	// Participation is only what this session has seen: a topic where the
	// user's messages were never fetched stays unparticipated.
	data.Participated = data.Participated || ix.isMe(msg.SenderID)
	return true
}

// Reify swaps a provisional id for the server id on the one topic holding it.
// A newer message in that topic already replaced the provisional id, so a
// miss is not an error.
func (ix *Index) Reify(oldID, newID chat.MessageID) bool {
	for _, data := range ix.topics {
		if data.LastMsgID == oldID {
			data.LastMsgID = newID
			return true
		}
	}
	return false
}

func (ix *Index) Get(key TopicKey) (TopicData, bool) {
	data, ok := ix.topics[key]
	if !ok {
		return TopicData{}, false
	}
	return *data, true
}

func (ix *Index) Has(key TopicKey) bool {
	_, ok := ix.topics[key]
	return ok
}

func (ix *Index) Delete(key TopicKey) bool {
	if _, ok := ix.topics[key]; !ok {
		return false
	}
	delete(ix.topics, key)
	return true
}

func (ix *Index) Len() int {
	return len(ix.topics)
}

func (ix *Index) Clear() {
	ix.topics = make(map[TopicKey]*TopicData)
}

// Sorted lists topics most recent first. Equal ids fall back to key order so
// the result never depends on map iteration.
func (ix *Index) Sorted() []TopicEntry {
	out := make([]TopicEntry, 0, len(ix.topics))
	for key, data := range ix.topics {
		out = append(out, TopicEntry{Key: key, TopicData: *data})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMsgID != out[j].LastMsgID {
			return out[i].LastMsgID > out[j].LastMsgID
		}
		return out[i].Key < out[j].Key
	})
	return out
}
