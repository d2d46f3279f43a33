package feed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tOgg1/rtopics/internal/logging"
)

const (
	DefaultPollInterval = 2 * time.Second
	defaultBuffer       = 256
)

type Option func(*Follower)

// WithPollInterval sets how often the file is re-read when no filesystem
// notification arrives.
func WithPollInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithForcePoll skips fsnotify entirely.
func WithForcePoll(force bool) Option {
	return func(f *Follower) {
		f.forcePoll = force
	}
}

func WithBuffer(n int) Option {
	return func(f *Follower) {
		if n > 0 {
			f.buffer = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(f *Follower) {
		f.log = log
	}
}

// Follower tails a feed file: it replays what is already there, then emits
// events as lines are appended.
type Follower struct {
	path         string
	pollInterval time.Duration
	forcePoll    bool
	buffer       int
	log          zerolog.Logger
}

func NewFollower(path string, opts ...Option) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve feed path: %w", err)
	}
	f := &Follower{
		path:         abs,
		pollInterval: DefaultPollInterval,
		buffer:       defaultBuffer,
		log:          logging.Component("feed"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Follower) Path() string { return f.path }

// Subscribe starts following and returns the event channel and a cancel
// function. The channel is closed once following stops.
func (f *Follower) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event, f.buffer)
	go f.loop(ctx, out)
	return out, cancel
}

func (f *Follower) loop(ctx context.Context, out chan<- Event) {
	defer close(out)

	var notify <-chan fsnotify.Event
	var notifyErrs <-chan error
	if !f.forcePoll {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			f.log.Warn().Err(err).Msg("fsnotify unavailable, polling")
		} else {
			defer w.Close()
			// Watch the directory so the file may be created or replaced later.
			if err := w.Add(filepath.Dir(f.path)); err != nil {
				f.log.Warn().Err(err).Msg("watch feed dir, polling")
			} else {
				notify = w.Events
				notifyErrs = w.Errors
			}
		}
	}

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	t := &tail{path: f.path}
	for {
		events, err := t.read()
		if err != nil {
			f.log.Warn().Err(err).Str("path", f.path).Msg("read feed")
		}
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return
			case out <- ev:
			}
		}
		for _, bad := range t.drainBad() {
			f.log.Warn().Err(bad).Str("path", f.path).Msg("skip feed line")
		}

		select {
		case <-ctx.Done():
			return
		case ev, ok := <-notify:
			if !ok {
				notify = nil
				continue
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
		case err, ok := <-notifyErrs:
			if !ok {
				notifyErrs = nil
				continue
			}
			f.log.Warn().Err(err).Msg("fsnotify")
		case <-ticker.C:
		}
	}
}

// tail reads complete lines appended to a file since the last read.
type tail struct {
	path   string
	offset int64
	lineNo int
	bad    []error
	prev   os.FileInfo
}

func (t *tail) read() ([]Event, error) {
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	replaced := t.prev != nil && !os.SameFile(t.prev, info)
	if replaced || info.Size() < t.offset {
		// Truncated or replaced: start over.
		t.offset = 0
		t.lineNo = 0
	}
	t.prev = info
	if info.Size() == t.offset {
		return nil, nil
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, err
	}

	var events []Event
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// A partial trailing line is picked up once it is complete.
			return events, nil
		}
		if err != nil {
			return events, err
		}
		t.offset += int64(len(line))
		t.lineNo++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		ev, perr := ParseLine(line)
		if perr != nil {
			t.bad = append(t.bad, &LineError{Line: t.lineNo, Err: perr})
			continue
		}
		events = append(events, ev)
	}
}

func (t *tail) drainBad() []error {
	bad := t.bad
	t.bad = nil
	return bad
}
