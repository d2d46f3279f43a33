package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rtopics/internal/logging"
)

const (
	CurrentVersion = 1

	defaultDebounce = 500 * time.Millisecond
)

type fileDocument struct {
	Version int                        `json:"version"`
	Values  map[string]json.RawMessage `json:"values,omitempty"`
}

// File keeps all values in one JSON document. Writes are debounced and land
// atomically (temp file + rename) under an advisory flock so that several
// clients on one machine do not interleave.
type File struct {
	path     string
	lockPath string

	mu       sync.Mutex
	values   map[string]json.RawMessage
	dirty    bool
	timer    *time.Timer
	debounce time.Duration
	saveErr  error
	log      zerolog.Logger
}

// OpenFile loads path if it exists. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path required")
	}
	f := &File{
		path:     path,
		lockPath: path + ".lock",
		values:   make(map[string]json.RawMessage),
		debounce: defaultDebounce,
		log:      logging.Component("localstore"),
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

// Load replaces in-memory values with the document on disk.
func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var doc fileDocument
	if err := withFileLock(f.lockPath, func() error {
		payload, err := os.ReadFile(f.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if len(payload) == 0 {
			return nil
		}
		return json.Unmarshal(payload, &doc)
	}); err != nil {
		return fmt.Errorf("load %s: %w", f.path, err)
	}

	f.values = make(map[string]json.RawMessage, len(doc.Values))
	for key, value := range doc.Values {
		if strings.TrimSpace(key) == "" {
			continue
		}
		f.values[key] = value
	}
	f.dirty = false
	return nil
}

func (f *File) Get(key string, out any) (bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	payload, ok := f.values[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, decode(payload, out)
}

func (f *File) Set(key string, value any) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	payload, err := encode(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = payload
	f.markDirtyLocked()
	return f.saveErr
}

func (f *File) Remove(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return ErrNotFound
	}
	delete(f.values, key)
	f.markDirtyLocked()
	return nil
}

// Close flushes pending writes.
func (f *File) Close() error {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	needsSave := f.dirty
	f.mu.Unlock()
	if !needsSave {
		return nil
	}
	return f.SaveNow()
}

func (f *File) SaveNow() error {
	f.mu.Lock()
	doc := fileDocument{
		Version: CurrentVersion,
		Values:  make(map[string]json.RawMessage, len(f.values)),
	}
	for key, value := range f.values {
		doc.Values[key] = append(json.RawMessage(nil), value...)
	}
	f.dirty = false
	f.mu.Unlock()

	err := withFileLock(f.lockPath, func() error {
		return writeAtomicJSON(f.path, doc)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
	if err != nil {
		f.dirty = true
		return err
	}
	return nil
}

func (f *File) markDirtyLocked() {
	f.dirty = true
	if f.timer == nil {
		f.timer = time.AfterFunc(f.debounce, func() {
			if err := f.SaveNow(); err != nil {
				f.log.Warn().Err(err).Str("path", f.path).Msg("save client storage")
			}
		})
		return
	}
	_ = f.timer.Reset(f.debounce)
}

func withFileLock(lockPath string, fn func() error) error {
	if strings.TrimSpace(lockPath) == "" {
		return fn()
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", lockPath, err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()
	return fn()
}

func writeAtomicJSON(path string, doc fileDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
