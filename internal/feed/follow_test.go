package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/rtopics/internal/chat"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(line)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func followTest(t *testing.T, forcePoll bool) {
	path := filepath.Join(t.TempDir(), "feed.ndjson")
	appendLine(t, path, `{"kind":"message","message":{"id":1,"type":"stream","stream_id":10,"topic":"a","sender_id":2}}`+"\n")

	f, err := NewFollower(path, WithPollInterval(20*time.Millisecond), WithForcePoll(forcePoll))
	require.NoError(t, err)
	ch, cancel := f.Subscribe(context.Background())
	defer cancel()

	require.Equal(t, chat.MessageID(1), receive(t, ch).Message.ID)

	// The partial line is held back until its newline arrives.
	appendLine(t, path, `{"kind":"read","message_ids":`)
	appendLine(t, path, "[1]}\nbroken\n")
	ev := receive(t, ch)
	require.Equal(t, KindRead, ev.Kind)
	require.Equal(t, []chat.MessageID{1}, ev.MessageIDs)

	appendLine(t, path, `{"kind":"mute_stream","stream_id":10,"muted":true}`+"\n")
	require.Equal(t, KindMuteStream, receive(t, ch).Kind)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFollowerNotify(t *testing.T) {
	followTest(t, false)
}

func TestFollowerPolling(t *testing.T) {
	followTest(t, true)
}

func TestFollowerRestartsAfterTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.ndjson")
	tl := &tail{path: path}
	events, err := tl.read()
	require.NoError(t, err)
	require.Empty(t, events)

	appendLine(t, path, `{"kind":"person","person":{"user_id":2,"full_name":"Alice Liddell"}}`+"\n")
	events, err = tl.read()
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"person","person":{"user_id":3,"full_name":"B"}}`+"\n"), 0o644))
	events, err = tl.read()
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, chat.UserID(3), events[0].Person.UserID)
}

func TestFollowerRestartsAfterReplaceWithLongerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.ndjson")
	appendLine(t, path, `{"kind":"person","person":{"user_id":2,"full_name":"A"}}`+"\n")

	tl := &tail{path: path}
	events, err := tl.read()
	require.NoError(t, err)
	require.Len(t, events, 1)

	// A rotated feed at least as long as the old one must be read from the top.
	next := filepath.Join(dir, "feed.next")
	appendLine(t, next, `{"kind":"person","person":{"user_id":3,"full_name":"Bob Bobson"}}`+"\n")
	appendLine(t, next, `{"kind":"person","person":{"user_id":4,"full_name":"Carol"}}`+"\n")
	require.NoError(t, os.Rename(next, path))

	events, err = tl.read()
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, chat.UserID(3), events[0].Person.UserID)
	require.Equal(t, chat.UserID(4), events[1].Person.UserID)

	events, err = tl.read()
	require.NoError(t, err)
	require.Empty(t, events)
}
