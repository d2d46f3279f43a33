// Package chat holds the in-memory message, stream and people directories
// that the recent topics view reads from.
package chat

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MessageID identifies a message. Server-assigned ids are whole numbers;
// locally echoed messages carry a fractional provisional id until the server
// confirms them.
type MessageID float64

// IsLocal reports whether id is a provisional local-echo id.
func (id MessageID) IsLocal() bool {
	return float64(id) != math.Trunc(float64(id))
}

func (id MessageID) String() string {
	return strconv.FormatFloat(float64(id), 'f', -1, 64)
}

type StreamID int64

type UserID int64

type MessageType string

const (
	MessageTypeStream  MessageType = "stream"
	MessageTypePrivate MessageType = "private"
)

type Message struct {
	ID        MessageID   `json:"id"`
	Type      MessageType `json:"type"`
	StreamID  StreamID    `json:"stream_id,omitempty"`
	Stream    string      `json:"stream,omitempty"`
	Topic     string      `json:"topic,omitempty"`
	SenderID  UserID      `json:"sender_id"`
	Timestamp int64       `json:"timestamp"` // unix seconds
	Content   string      `json:"content,omitempty"`
}

func (m Message) IsStream() bool {
	return m.Type == MessageTypeStream
}

func (m Message) Time() time.Time {
	if m.Timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(m.Timestamp, 0).UTC()
}

// TopicRef names a topic within a stream.
type TopicRef struct {
	StreamID StreamID
	Topic    string
}

func (m Message) TopicRef() TopicRef {
	return TopicRef{StreamID: m.StreamID, Topic: m.Topic}
}

// SameTopic compares topic names case-insensitively.
func SameTopic(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

func topicKey(stream StreamID, topic string) string {
	return strconv.FormatInt(int64(stream), 10) + ":" + strings.ToLower(topic)
}
