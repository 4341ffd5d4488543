package ui

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestScheduler_RunsPeriodically(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	err := s.Add(Fragment{
		Name:     "tick",
		RunEvery: 5 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return runs.Load() >= 3 })
}

func TestScheduler_AddValidation(t *testing.T) {
	s := NewScheduler()
	run := func(context.Context) error { return nil }

	tests := []struct {
		name string
		frag Fragment
		want error
	}{
		{"no name", Fragment{RunEvery: time.Second, Run: run}, ErrInvalidFragment},
		{"no run", Fragment{Name: "a", RunEvery: time.Second}, ErrInvalidFragment},
		{"zero interval", Fragment{Name: "a", Run: run}, ErrInvalidFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Add(tt.frag); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}

	good := Fragment{Name: "a", RunEvery: time.Second, Run: run}
	if err := s.Add(good); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(good); !errors.Is(err, ErrDuplicateFragment) {
		t.Errorf("duplicate Add() error = %v, want ErrDuplicateFragment", err)
	}

	s.Stop()
	if err := s.Add(Fragment{Name: "b", RunEvery: time.Second, Run: run}); !errors.Is(err, ErrSchedulerStopped) {
		t.Errorf("Add() after Stop error = %v, want ErrSchedulerStopped", err)
	}
}

func TestScheduler_NoOverlap(t *testing.T) {
	s := NewScheduler()
	var active, maxActive atomic.Int32
	release := make(chan struct{})

	err := s.Add(Fragment{
		Name:     "slow",
		RunEvery: time.Millisecond,
		Run: func(ctx context.Context) error {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	waitFor(t, func() bool {
		st, _ := s.Stats("slow")
		return st.Skipped >= 3
	})
	close(release)
	s.Stop()

	if maxActive.Load() != 1 {
		t.Errorf("max concurrent runs = %d, want 1", maxActive.Load())
	}
}

func TestScheduler_TimeoutBoundsRun(t *testing.T) {
	s := NewScheduler()
	errs := make(chan error, 1)

	err := s.Add(Fragment{
		Name:     "stuck",
		RunEvery: time.Hour,
		Timeout:  10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			select {
			case errs <- ctx.Err():
			default:
			}
			return ctx.Err()
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	defer s.Stop()

	if err := s.Trigger("stuck"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	select {
	case err := <-errs:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("run ctx error = %v, want DeadlineExceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stuck run was not cancelled by its timeout")
	}

	waitFor(t, func() bool {
		st, _ := s.Stats("stuck")
		return st.Failures == 1
	})
}

func TestScheduler_TriggerRunsImmediately(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	err := s.Add(Fragment{
		Name:     "manual",
		RunEvery: time.Hour,
		Run: func(context.Context) error {
			ran <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	defer s.Stop()

	if err := s.Trigger("manual"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger() did not run the fragment")
	}

	if err := s.Trigger("nope"); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("Trigger(nope) error = %v, want ErrUnknownFragment", err)
	}
}

func TestScheduler_PanicRecovered(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	err := s.Add(Fragment{
		Name:     "panicky",
		RunEvery: 2 * time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	defer s.Stop()

	// The scheduler keeps going after a panic.
	waitFor(t, func() bool { return calls.Load() >= 2 })

	st, err := s.Stats("panicky")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Failures == 0 {
		t.Error("panicking runs not counted as failures")
	}
}

func TestScheduler_AddAfterStart(t *testing.T) {
	s := NewScheduler()
	s.Start(context.Background())
	defer s.Stop()

	ran := make(chan struct{}, 1)
	err := s.Add(Fragment{
		Name:     "late",
		RunEvery: 2 * time.Millisecond,
		Run: func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("fragment added after Start never ran")
	}
}

func TestScheduler_StopCancelsContext(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	err := s.Add(Fragment{
		Name:     "blocking",
		RunEvery: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	s.Start(context.Background())
	s.Trigger("blocking")
	<-started

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
	s.Stop() // idempotent
}
