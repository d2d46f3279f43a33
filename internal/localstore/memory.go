package localstore

import "sync"

// Memory keeps values for the lifetime of the process.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(key string, out any) (bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	payload, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, decode(payload, out)
}

func (m *Memory) Set(key string, value any) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	payload, err := encode(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return ErrNotFound
	}
	delete(m.values, key)
	return nil
}

func (m *Memory) Close() error { return nil }
