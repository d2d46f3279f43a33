// Package localstore provides local key-value client storage. Values are
// stored as JSON documents so that any backend round-trips the same shapes.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("key not found")

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is the storage contract shared by all backends.
type Store interface {
	// Get decodes the value stored under key into out. It reports false when
	// the key is absent.
	Get(key string, out any) (bool, error)
	// Set stores value under key.
	Set(key string, value any) error
	// Remove deletes key. Removing an absent key returns ErrNotFound.
	Remove(key string) error
	Close() error
}

type Config struct {
	Backend string
	Path    string
}

// Open builds the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", BackendFile:
		return OpenFile(cfg.Path)
	case BackendSQLite:
		return OpenSQLite(cfg.Path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	return key, nil
}

func encode(value any) (json.RawMessage, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return payload, nil
}

func decode(payload []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}
