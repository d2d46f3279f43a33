package recent

import (
	"time"

	"github.com/tOgg1/rtopics/internal/chat"
)

// MaxAvatars is how many senders a row shows before collapsing the rest into
// a count.
const MaxAvatars = 4

// Row is one rendered table row.
type Row struct {
	Key TopicKey

	StreamID    chat.StreamID
	Stream      string
	StreamColor string
	InviteOnly  bool
	WebPublic   bool

	Topic        string
	UnreadCount  int
	LastMsgID    chat.MessageID
	LastMsgTime  time.Time
	Senders      []chat.Person // most recent first
	OtherSenders int

	Muted        bool
	TopicMuted   bool
	Participated bool

	// Hidden is set by in-place updates that filter out an already rendered
	// row without rebuilding the table.
	Hidden bool
}

// formatTopic resolves a topic's display data. It reports false when the
// last message or its stream is gone.
func (c *Controller) formatTopic(data TopicData) (Row, bool) {
	msg, ok := c.deps.Messages.Get(data.LastMsgID)
	if !ok {
		return Row{}, false
	}
	sub, ok := c.deps.Streams.Get(msg.StreamID)
	if !ok {
		return Row{}, false
	}

	topicMuted := c.deps.Muted.IsTopicMuted(msg.StreamID, msg.Topic)
	streamMuted := c.deps.Streams.IsMuted(msg.StreamID)

	all := c.deps.Senders.TopicRecentSenders(msg.StreamID, msg.Topic)
	recent := all
	if len(recent) > MaxAvatars {
		recent = recent[len(recent)-MaxAvatars:]
	}
	newestFirst := make([]chat.UserID, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, recent[i])
	}

	return Row{
		Key:          KeyFor(msg.StreamID, msg.Topic),
		StreamID:     msg.StreamID,
		Stream:       streamName(msg.Stream, sub.Name),
		StreamColor:  sub.Color,
		InviteOnly:   sub.InviteOnly,
		WebPublic:    sub.WebPublic,
		Topic:        msg.Topic,
		UnreadCount:  c.deps.Unread.NumUnreadForTopic(msg.StreamID, msg.Topic),
		LastMsgID:    msg.ID,
		LastMsgTime:  msg.Time(),
		Senders:      c.deps.People.SenderInfo(newestFirst),
		OtherSenders: max(0, len(all)-MaxAvatars),
		Muted:        topicMuted || streamMuted,
		TopicMuted:   topicMuted,
		Participated: data.Participated,
	}, true
}
