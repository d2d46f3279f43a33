// Package feed reads the client event stream: newline-delimited JSON events
// that describe messages arriving, moving, being read, muted, or deleted.
package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tOgg1/rtopics/internal/chat"
)

type Kind string

const (
	KindMessage       Kind = "message"
	KindUpdateMessage Kind = "update_message"
	KindDeleteMessage Kind = "delete_message"
	KindReify         Kind = "reify"
	KindMuteTopic     Kind = "mute_topic"
	KindMuteStream    Kind = "mute_stream"
	KindRead          Kind = "read"
	KindSubscription  Kind = "subscription"
	KindPerson        Kind = "person"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event is one line of the feed. Which fields are set depends on Kind.
type Event struct {
	Kind Kind `json:"kind"`

	// message
	Message *chat.Message `json:"message,omitempty"`
	Unread  bool          `json:"unread,omitempty"`

	// update_message, delete_message, read
	MessageIDs []chat.MessageID `json:"message_ids,omitempty"`

	// update_message: the topic the messages left. StreamID and Topic hold
	// the destination; zero values mean unchanged.
	OrigStreamID chat.StreamID `json:"orig_stream_id,omitempty"`
	OrigTopic    string        `json:"orig_topic,omitempty"`

	// update_message, mute_topic, mute_stream
	StreamID chat.StreamID `json:"stream_id,omitempty"`
	Stream   string        `json:"stream,omitempty"`
	Topic    string        `json:"topic,omitempty"`
	Muted    bool          `json:"muted,omitempty"`

	// reify
	LocalID  chat.MessageID `json:"local_id,omitempty"`
	ServerID chat.MessageID `json:"server_id,omitempty"`

	Subscription *chat.Subscription `json:"subscription,omitempty"`
	Person       *chat.Person       `json:"person,omitempty"`
}

func (e Event) Validate() error {
	switch e.Kind {
	case KindMessage:
		if e.Message == nil {
			return fmt.Errorf("%w: message event without message", ErrInvalidEvent)
		}
	case KindUpdateMessage:
		if len(e.MessageIDs) == 0 || e.OrigStreamID == 0 {
			return fmt.Errorf("%w: update_message needs message_ids and orig_stream_id", ErrInvalidEvent)
		}
	case KindDeleteMessage, KindRead:
		if len(e.MessageIDs) == 0 {
			return fmt.Errorf("%w: %s without message_ids", ErrInvalidEvent, e.Kind)
		}
	case KindReify:
		if e.LocalID == 0 || e.ServerID == 0 {
			return fmt.Errorf("%w: reify needs local_id and server_id", ErrInvalidEvent)
		}
	case KindMuteTopic:
		if e.StreamID == 0 || e.Topic == "" {
			return fmt.Errorf("%w: mute_topic needs stream_id and topic", ErrInvalidEvent)
		}
	case KindMuteStream:
		if e.StreamID == 0 {
			return fmt.Errorf("%w: mute_stream needs stream_id", ErrInvalidEvent)
		}
	case KindSubscription:
		if e.Subscription == nil || e.Subscription.StreamID == 0 {
			return fmt.Errorf("%w: subscription event without stream", ErrInvalidEvent)
		}
	case KindPerson:
		if e.Person == nil || e.Person.UserID == 0 {
			return fmt.Errorf("%w: person event without user", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}

// ParseLine decodes one feed line.
func ParseLine(line []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// LineError reports a feed line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Decode reads every complete line from r. Blank lines are skipped; bad lines
// are returned as LineErrors alongside the events that did decode.
func Decode(r io.Reader) ([]Event, []error, error) {
	var (
		events []Event
		bad    []error
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := ParseLine(line)
		if err != nil {
			bad = append(bad, &LineError{Line: lineNo, Err: err})
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, bad, fmt.Errorf("read feed: %w", err)
	}
	return events, bad, nil
}

// Replay decodes a whole feed file.
func Replay(path string) ([]Event, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

const maxLineBytes = 1 << 20
