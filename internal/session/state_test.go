package session

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestSetDefault_Idempotent(t *testing.T) {
	s := NewState()

	if !s.SetDefault(KeyPicoMsg, DefaultPicoMsg) {
		t.Fatal("first SetDefault() = false, want true")
	}
	if s.SetDefault(KeyPicoMsg, "something else") {
		t.Error("second SetDefault() = true, want false")
	}

	got, err := s.String(KeyPicoMsg)
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	if got != DefaultPicoMsg {
		t.Errorf("pico_msg = %q, want %q", got, DefaultPicoMsg)
	}
}

func TestSetDefault_DoesNotOverwriteSetValue(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		set      any
		fallback any
	}{
		{"pico message", KeyPicoMsg, "42", DefaultPicoMsg},
		{"print status", KeyPrintStatus, "Sent the message: 7 to topic x", DefaultPrintStatus},
		{"slider", KeySlider, 7, 1},
		{"placeholder", KeyPlaceholder1, "region-1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.Set(tt.key, tt.set)

			// Simulate repeated renders.
			for i := 0; i < 3; i++ {
				s.SetDefault(tt.key, tt.fallback)
			}

			got, _ := s.Get(tt.key)
			if got != tt.set {
				t.Errorf("%s = %v, want %v", tt.key, got, tt.set)
			}
		})
	}
}

func TestSetDefault_NilCountsAsSet(t *testing.T) {
	s := NewState()
	s.SetDefault(KeyPlaceholder2, nil)

	if !s.Has(KeyPlaceholder2) {
		t.Fatal("Has() = false for key initialised to nil")
	}
	if s.SetDefault(KeyPlaceholder2, "region") {
		t.Error("SetDefault() overwrote a key initialised to nil")
	}
	got, err := s.String(KeyPlaceholder2)
	if err != nil || got != "" {
		t.Errorf("String() = %q, %v; want empty, nil", got, err)
	}
}

func TestTypedGetters(t *testing.T) {
	s := NewState()
	s.Set(KeySlider, 7)
	s.Set(KeyPrintStatus, "NA")

	if n, err := s.Int(KeySlider); err != nil || n != 7 {
		t.Errorf("Int() = %d, %v; want 7, nil", n, err)
	}
	if _, err := s.Int(KeyPrintStatus); !errors.Is(err, ErrWrongType) {
		t.Errorf("Int() on string error = %v, want ErrWrongType", err)
	}
	if _, err := s.String(KeySlider); !errors.Is(err, ErrWrongType) {
		t.Errorf("String() on int error = %v, want ErrWrongType", err)
	}
	if _, err := s.String("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("String() on missing key error = %v, want ErrKeyNotFound", err)
	}
	if _, err := s.Int("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Int() on missing key error = %v, want ErrKeyNotFound", err)
	}
}

func TestKeysSnapshotDelete(t *testing.T) {
	s := NewState()
	s.Set(KeySlider, 1)
	s.Set(KeyPicoMsg, "-1")

	if got, want := s.Keys(), []string{KeyPicoMsg, KeySlider}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	snap := s.Snapshot()
	snap[KeySlider] = 9
	if n, _ := s.Int(KeySlider); n != 1 {
		t.Error("mutating Snapshot() changed the state")
	}

	s.Delete(KeySlider)
	if s.Has(KeySlider) {
		t.Error("Has() = true after Delete")
	}
}

func TestState_ConcurrentSetDefault(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.SetDefault(KeySlider, i) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("%d goroutines won SetDefault, want exactly 1", winners)
	}
}
