package bridge

import (
	"context"
	"sync"
	"sync/atomic"
)

// Source yields inbound payloads to a Bridge tick.
type Source interface {
	// Receive returns the next payload. ok is false when no new payload is
	// available and the caller should keep what it has.
	Receive(ctx context.Context) (payload []byte, ok bool, err error)
}

// Inbox is a bounded, drop-oldest buffer of inbound payloads.
//
// Push never blocks: when the buffer is full the oldest payload is dropped.
// Receive returns the newest payload and discards the rest as stale.
type Inbox struct {
	mu       sync.Mutex
	buf      [][]byte
	capacity int

	dropped atomic.Uint64
}

// NewInbox creates an Inbox holding at most capacity payloads.
// A capacity below 1 is treated as 1.
func NewInbox(capacity int) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{
		buf:      make([][]byte, 0, capacity),
		capacity: capacity,
	}
}

// Push appends payload, dropping the oldest entry if the inbox is full.
// It reports whether something was dropped.
func (in *Inbox) Push(payload []byte) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	dropped := false
	if len(in.buf) == in.capacity {
		copy(in.buf, in.buf[1:])
		in.buf = in.buf[:len(in.buf)-1]
		in.dropped.Add(1)
		dropped = true
	}
	in.buf = append(in.buf, payload)
	return dropped
}

// Receive returns the newest payload and empties the inbox.
// It never blocks and never fails.
func (in *Inbox) Receive(_ context.Context) ([]byte, bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.buf) == 0 {
		return nil, false, nil
	}
	newest := in.buf[len(in.buf)-1]
	clear(in.buf)
	in.buf = in.buf[:0]
	return newest, true, nil
}

// Len returns the number of buffered payloads.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.buf)
}

// Dropped returns how many payloads were discarded because the inbox was full.
func (in *Inbox) Dropped() uint64 {
	return in.dropped.Load()
}
