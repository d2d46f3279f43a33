package feed

import (
	"strconv"
	"strings"

	"github.com/tOgg1/rtopics/internal/chat"
)

// Hooks is what the recent topics view exposes to incoming events.
type Hooks interface {
	ProcessMessages(msgs []chat.Message)
	ReifyMessageID(oldID, newID chat.MessageID) bool
	HandleTopicEdit(oldStream chat.StreamID, oldTopic, newTopic string, newStream chat.StreamID)
	HandleDeletedMessages(ids []chat.MessageID)
	UpdateTopicIsMuted(stream chat.StreamID, topic string) bool
	UpdateTopicUnreadCount(ref chat.TopicRef)
	CompleteRerender()
}

// Apply updates the realm with ev and then notifies hooks, which may be nil.
func Apply(realm *chat.Realm, hooks Hooks, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	switch ev.Kind {
	case KindMessage:
		msg := *ev.Message
		realm.Messages.Add(msg)
		if ev.Unread && !realm.People.IsMyUserID(msg.SenderID) {
			realm.Unread.Add(msg)
		}
		if hooks != nil {
			hooks.ProcessMessages([]chat.Message{msg})
		}

	case KindUpdateMessage:
		if ev.StreamID == 0 && ev.Topic == "" {
			return nil
		}
		moved := realm.Messages.Move(ev.MessageIDs, ev.StreamID, ev.Stream, ev.Topic)
		for _, before := range moved {
			if after, ok := realm.Messages.Get(before.ID); ok {
				realm.Unread.Relocate(after)
			}
		}
		if hooks != nil {
			for _, ref := range movedFrom(ev, moved) {
				hooks.HandleTopicEdit(ref.StreamID, ref.Topic, ev.Topic, ev.StreamID)
			}
		}

	case KindDeleteMessage:
		realm.Messages.Delete(ev.MessageIDs)
		realm.Unread.Remove(ev.MessageIDs)
		if hooks != nil {
			hooks.HandleDeletedMessages(ev.MessageIDs)
		}

	case KindReify:
		realm.Messages.Reify(ev.LocalID, ev.ServerID)
		realm.Unread.Reify(ev.LocalID, ev.ServerID)
		if hooks != nil {
			hooks.ReifyMessageID(ev.LocalID, ev.ServerID)
		}

	case KindMuteTopic:
		realm.Muted.SetTopicMuted(ev.StreamID, ev.Topic, ev.Muted)
		if hooks != nil {
			hooks.UpdateTopicIsMuted(ev.StreamID, ev.Topic)
		}

	case KindMuteStream:
		realm.Streams.SetMuted(ev.StreamID, ev.Muted)
		if hooks != nil {
			hooks.CompleteRerender()
		}

	case KindRead:
		refs := realm.Unread.MarkRead(ev.MessageIDs)
		if hooks != nil {
			for _, ref := range refs {
				hooks.UpdateTopicUnreadCount(ref)
			}
		}

	case KindSubscription:
		realm.Streams.Upsert(*ev.Subscription)
		if hooks != nil {
			hooks.CompleteRerender()
		}

	case KindPerson:
		realm.People.Add(*ev.Person)
	}
	return nil
}

// movedFrom lists the distinct topics the moved messages left. The event's
// own orig_topic is included when set, even if none of its messages were
// found.
func movedFrom(ev Event, moved []chat.Message) []chat.TopicRef {
	refs := make([]chat.TopicRef, 0, len(moved)+1)
	seen := make(map[string]struct{}, len(moved)+1)
	add := func(ref chat.TopicRef) {
		if ref.StreamID == 0 || ref.Topic == "" {
			return
		}
		key := strconv.FormatInt(int64(ref.StreamID), 10) + ":" + strings.ToLower(ref.Topic)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		refs = append(refs, ref)
	}
	add(chat.TopicRef{StreamID: ev.OrigStreamID, Topic: ev.OrigTopic})
	for _, msg := range moved {
		add(msg.TopicRef())
	}
	return refs
}
