package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ViewRecentTopics = "recent_topics"
	ViewConversation = "conversation"
)

// Context remembers where the user left the client: the active view and,
// for the conversation view, the narrow.
type Context struct {
	View string `yaml:"view,omitempty"`
	// StreamID and Topic are the narrow. A zero stream means all messages.
	StreamID  int64     `yaml:"stream_id,omitempty"`
	Stream    string    `yaml:"stream,omitempty"`
	Topic     string    `yaml:"topic,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

func (c *Context) IsEmpty() bool {
	return c.View == "" && c.StreamID == 0
}

func (c *Context) HasNarrow() bool {
	return c.StreamID != 0
}

func (c *Context) SetView(view string) {
	c.View = view
	c.UpdatedAt = time.Now()
}

// SetNarrow records a stream/topic narrow. It implies the conversation view.
func (c *Context) SetNarrow(streamID int64, stream, topic string) {
	c.View = ViewConversation
	c.StreamID = streamID
	c.Stream = stream
	c.Topic = topic
	c.UpdatedAt = time.Now()
}

func (c *Context) ClearNarrow() {
	c.StreamID = 0
	c.Stream = ""
	c.Topic = ""
	c.UpdatedAt = time.Now()
}

func (c *Context) String() string {
	if c.IsEmpty() {
		return "(no context set)"
	}
	if !c.HasNarrow() {
		return "view:" + c.View
	}
	name := c.Stream
	if name == "" {
		name = fmt.Sprintf("#%d", c.StreamID)
	}
	if c.Topic == "" {
		return fmt.Sprintf("view:%s narrow:%s", c.View, name)
	}
	return fmt.Sprintf("view:%s narrow:%s>%s", c.View, name, c.Topic)
}

// ContextStore manages loading and saving context.
type ContextStore struct {
	path string
	mu   sync.RWMutex
}

// NewContextStore creates a new context store.
// If path is empty, uses the default path (~/.config/rtopics/context.yaml).
func NewContextStore(path string) *ContextStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "rtopics", "context.yaml")
	}
	return &ContextStore{path: path}
}

func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the context from disk.
// Returns an empty context if the file doesn't exist.
func (s *ContextStore) Load() (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := &Context{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	if err := yaml.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	return ctx, nil
}

// Save writes the context to disk.
func (s *ContextStore) Save(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	data, err := yaml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	return nil
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
