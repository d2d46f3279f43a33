package recent

import (
	"errors"
	"fmt"
	"strings"
)

type Filter string

const (
	FilterAll          Filter = "all"
	FilterUnread       Filter = "unread"
	FilterParticipated Filter = "participated"
	FilterIncludeMuted Filter = "include_muted"
)

// FiltersStorageKey is the local storage entry holding the active filters.
const FiltersStorageKey = "recent_topic_filters"

// FilterButtons is the filter bar, left to right.
var FilterButtons = []Filter{FilterAll, FilterUnread, FilterParticipated, FilterIncludeMuted}

var ErrUnknownFilter = errors.New("unknown filter")

func ParseFilter(name string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range FilterButtons {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFilter, name)
}

func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterUnread:
		return "Unread"
	case FilterParticipated:
		return "Participated"
	case FilterIncludeMuted:
		return "Include muted"
	default:
		return string(f)
	}
}

// Storage is local key-value client storage.
type Storage interface {
	Get(key string, out any) (bool, error)
	Set(key string, value any) error
}

// FilterSet is the ordered set of active filters. "all" is never a member;
// toggling it clears the set.
type FilterSet struct {
	storage Storage
	active  []Filter
}

func NewFilterSet(storage Storage) *FilterSet {
	return &FilterSet{storage: storage}
}

func (s *FilterSet) Has(f Filter) bool {
	for _, active := range s.active {
		if active == f {
			return true
		}
	}
	return false
}

func (s *FilterSet) Len() int {
	return len(s.active)
}

func (s *FilterSet) Active() []Filter {
	return append([]Filter(nil), s.active...)
}

// Toggle applies a filter button press and persists the result.
func (s *FilterSet) Toggle(name Filter) error {
	if _, err := ParseFilter(string(name)); err != nil {
		return err
	}
	switch {
	case name == FilterAll:
		s.active = nil
	case s.Has(name):
		s.remove(name)
	default:
		s.active = append(s.active, name)
	}
	return s.Save()
}

func (s *FilterSet) Save() error {
	if s.storage == nil {
		return nil
	}
	names := make([]string, 0, len(s.active))
	for _, f := range s.active {
		names = append(names, string(f))
	}
	if err := s.storage.Set(FiltersStorageKey, names); err != nil {
		return fmt.Errorf("save filters: %w", err)
	}
	return nil
}

// Reload replaces the in-memory set with the persisted one. Unknown names in
// storage are dropped.
func (s *FilterSet) Reload() error {
	if s.storage == nil {
		return nil
	}
	var names []string
	ok, err := s.storage.Get(FiltersStorageKey, &names)
	if err != nil {
		return fmt.Errorf("load filters: %w", err)
	}
	if !ok {
		s.active = nil
		return nil
	}
	loaded := make([]Filter, 0, len(names))
	for _, name := range names {
		f, err := ParseFilter(name)
		if err != nil || f == FilterAll {
			continue
		}
		dup := false
		for _, seen := range loaded {
			if seen == f {
				dup = true
				break
			}
		}
		if !dup {
			loaded = append(loaded, f)
		}
	}
	s.active = loaded
	return nil
}

// Clear empties the in-memory set without touching storage.
func (s *FilterSet) Clear() {
	s.active = nil
}

func (s *FilterSet) remove(f Filter) {
	out := s.active[:0]
	for _, active := range s.active {
		if active != f {
			out = append(out, active)
		}
	}
	s.active = out
}
