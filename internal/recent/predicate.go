package recent

import "strings"

// TopicInSearchResults reports whether every whitespace-separated word of
// keyword occurs in "<stream> <topic>", ignoring case.
func TopicInSearchResults(keyword, stream, topic string) bool {
	if keyword == "" {
		return true
	}
	text := strings.ToLower(stream + " " + topic)
	for _, word := range strings.Fields(strings.ToLower(keyword)) {
		if !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

// ShouldHide applies the active filters and search text to one topic.
// Topics whose last message or stream cannot be resolved are always hidden.
func (c *Controller) ShouldHide(data TopicData) bool {
	msg, ok := c.deps.Messages.Get(data.LastMsgID)
	if !ok {
		return true
	}
	sub, ok := c.deps.Streams.Get(msg.StreamID)
	if !ok || !sub.Subscribed {
		return true
	}

	if c.filters.Has(FilterUnread) && c.deps.Unread.NumUnreadForTopic(msg.StreamID, msg.Topic) == 0 {
		return true
	}

	if !data.Participated && c.filters.Has(FilterParticipated) {
		return true
	}

	if !c.filters.Has(FilterIncludeMuted) {
		if c.deps.Muted.IsTopicMuted(msg.StreamID, msg.Topic) || c.deps.Streams.IsMuted(msg.StreamID) {
			return true
		}
	}

	return !TopicInSearchResults(c.search, streamName(msg.Stream, sub.Name), msg.Topic)
}

func streamName(fromMessage, fromDirectory string) string {
	if fromMessage != "" {
		return fromMessage
	}
	return fromDirectory
}
