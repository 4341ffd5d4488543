package session

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Well-known state keys.
const (
	// KeyPicoMsg holds the last payload received on the inbound topic.
	KeyPicoMsg = "pico_msg"
	// KeyPlaceholder1 holds the region ID of the "changing value" slot.
	KeyPlaceholder1 = "placeholder1"
	// KeyPlaceholder2 holds the region ID of the "message from the pico" slot.
	KeyPlaceholder2 = "placeholder2"
	// KeyPrintStatus holds the last publish status line.
	KeyPrintStatus = "print_status"
	// KeySlider holds the current slider value.
	KeySlider = "myslider_val"
	// KeySystemState holds the radio selection.
	KeySystemState = "system_state"
)

// Initial values for keys that have a fixed default.
const (
	DefaultPicoMsg     = "-1"
	DefaultPrintStatus = "NA"
)

// State is a concurrency-safe key/value map scoped to one session.
type State struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// SetDefault stores value under key only if key is absent.
// It reports whether the value was stored.
func (s *State) SetDefault(key string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false
	}
	s.values[key] = value
	return true
}

// Set stores value under key, replacing any previous value.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is set.
func (s *State) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// String returns the string stored under key.
// A nil value (a key initialised to "empty") reads as "".
func (s *State) String(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s is %T, not string", ErrWrongType, key, v)
	}
}

// Int returns the int stored under key.
func (s *State) Int(key string) (int, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, not int", ErrWrongType, key, v)
	}
	return n, nil
}

// Delete removes key.
func (s *State) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Keys returns the set keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Snapshot returns a shallow copy of all values.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}
