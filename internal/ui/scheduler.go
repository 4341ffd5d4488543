package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Fragment is a closure re-run on a fixed interval.
type Fragment struct {
	// Name identifies the fragment for Trigger and Stats.
	Name string

	// RunEvery is the interval between runs.
	RunEvery time.Duration

	// Timeout bounds a single run. Zero means the run is bounded only by
	// scheduler shutdown.
	Timeout time.Duration

	// Run does the work. It should honour ctx.
	Run func(ctx context.Context) error
}

// Stats counts fragment outcomes.
type Stats struct {
	Runs     uint64 // completed runs, successful or not
	Failures uint64 // runs that returned an error or panicked
	Skipped  uint64 // ticks dropped because the previous run was still going
}

// Logger defines the logging interface used by the Scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Scheduler runs fragments on their own goroutines.
//
// Runs of one fragment never overlap: a tick that fires while the previous
// run is still in progress is skipped.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Scheduler struct {
	logger Logger

	mu        sync.Mutex
	fragments map[string]*fragmentRunner
	ctx       context.Context
	cancel    context.CancelFunc
	stopped   bool

	wg       sync.WaitGroup
	stopOnce sync.Once
}

type fragmentRunner struct {
	frag    Fragment
	trigger chan struct{}
	running atomic.Bool

	runs     atomic.Uint64
	failures atomic.Uint64
	skipped  atomic.Uint64
}

// NewScheduler creates an idle scheduler. Call Start to begin running
// fragments.
func NewScheduler() *Scheduler {
	return &Scheduler{
		logger:    noopLogger{},
		fragments: make(map[string]*fragmentRunner),
	}
}

// SetLogger sets the logger for this scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Add registers a fragment. If the scheduler is running, the fragment
// starts immediately.
func (s *Scheduler) Add(f Fragment) error {
	if f.Name == "" || f.Run == nil || f.RunEvery <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidFragment, f.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if _, exists := s.fragments[f.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFragment, f.Name)
	}

	fr := &fragmentRunner{frag: f, trigger: make(chan struct{}, 1)}
	s.fragments[f.Name] = fr
	if s.ctx != nil {
		s.launch(fr)
	}
	return nil
}

// Start begins running every registered fragment until ctx is cancelled
// or Stop is called. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil || s.stopped {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, fr := range s.fragments {
		s.launch(fr)
	}
}

// launch starts the loop for fr. Caller holds s.mu.
func (s *Scheduler) launch(fr *fragmentRunner) {
	s.wg.Add(1)
	go s.loop(s.ctx, fr)
}

// Stop cancels all fragments and waits for in-flight runs to return.
// Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
	})
}

// Trigger asks the named fragment to run now instead of waiting for its
// next tick. It does not block; a trigger while a run is pending is merged.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	fr, ok := s.fragments[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFragment, name)
	}

	select {
	case fr.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Stats returns the counters for the named fragment.
func (s *Scheduler) Stats(name string) (Stats, error) {
	s.mu.Lock()
	fr, ok := s.fragments[name]
	s.mu.Unlock()
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrUnknownFragment, name)
	}
	return Stats{
		Runs:     fr.runs.Load(),
		Failures: fr.failures.Load(),
		Skipped:  fr.skipped.Load(),
	}, nil
}

func (s *Scheduler) getLogger() Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// loop fires fr on every tick or trigger until ctx is done.
func (s *Scheduler) loop(ctx context.Context, fr *fragmentRunner) {
	defer s.wg.Done()

	ticker := time.NewTicker(fr.frag.RunEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-fr.trigger:
		}

		if !fr.running.CompareAndSwap(false, true) {
			fr.skipped.Add(1)
			continue
		}
		s.wg.Add(1)
		go s.execute(ctx, fr)
	}
}

// execute performs one run of fr with timeout and panic recovery.
func (s *Scheduler) execute(ctx context.Context, fr *fragmentRunner) {
	defer s.wg.Done()
	defer fr.running.Store(false)

	if fr.frag.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fr.frag.Timeout)
		defer cancel()
	}

	err := s.safeRun(ctx, fr.frag)
	fr.runs.Add(1)
	if err != nil {
		fr.failures.Add(1)
		s.getLogger().Warn("fragment run failed",
			"fragment", fr.frag.Name,
			"error", err,
		)
	}
}

func (s *Scheduler) safeRun(ctx context.Context, f Fragment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.getLogger().Error("fragment panic recovered",
				"fragment", f.Name,
				"panic", r,
			)
			err = fmt.Errorf("fragment %s panicked: %v", f.Name, r)
		}
	}()
	return f.Run(ctx)
}
