package bridge

import (
	"context"
	"testing"
)

func TestInbox_ReceiveReturnsNewest(t *testing.T) {
	in := NewInbox(4)
	in.Push([]byte("1"))
	in.Push([]byte("2"))
	in.Push([]byte("3"))

	got, ok, err := in.Receive(context.Background())
	if err != nil || !ok {
		t.Fatalf("Receive() = %v, %v; want ok", ok, err)
	}
	if string(got) != "3" {
		t.Errorf("Receive() = %q, want newest 3", got)
	}
	if in.Len() != 0 {
		t.Errorf("Len() after Receive = %d, want 0", in.Len())
	}
}

func TestInbox_EmptyIsNotAnError(t *testing.T) {
	in := NewInbox(1)
	got, ok, err := in.Receive(context.Background())
	if err != nil || ok || got != nil {
		t.Errorf("Receive() on empty = %q, %v, %v; want nil, false, nil", got, ok, err)
	}
}

func TestInbox_DropOldest(t *testing.T) {
	tests := []struct {
		name        string
		capacity    int
		pushes      int
		wantLen     int
		wantDropped uint64
	}{
		{"under capacity", 4, 3, 3, 0},
		{"at capacity", 4, 4, 4, 0},
		{"over capacity", 4, 10, 4, 6},
		{"zero capacity clamps to one", 0, 3, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInbox(tt.capacity)
			for i := 0; i < tt.pushes; i++ {
				in.Push([]byte{byte('a' + i)})
			}
			if in.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", in.Len(), tt.wantLen)
			}
			if in.Dropped() != tt.wantDropped {
				t.Errorf("Dropped() = %d, want %d", in.Dropped(), tt.wantDropped)
			}
			got, _, _ := in.Receive(context.Background())
			if want := byte('a' + tt.pushes - 1); got[0] != want {
				t.Errorf("Receive() = %q, want %q", got, want)
			}
		})
	}
}
