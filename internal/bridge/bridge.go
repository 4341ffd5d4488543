package bridge

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/nerrad567/pico-bridge/internal/session"
	"github.com/nerrad567/pico-bridge/internal/ui"
)

// FragmentName is the scheduler name of the bridge fragment.
const FragmentName = "event-bridge"

// Display text prefixes.
const (
	ChangingValuePrefix = "SOME CHANGING VALUE:\n"
	PicoMessagePrefix   = "Message from the pico:\n"
)

// Logger defines the logging interface used by the bridge package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Bridge updates one session's display regions from a Source.
type Bridge struct {
	state   *session.State
	regions *ui.Regions
	source  Source
	random  func() float64
	logger  Logger
}

// New creates a Bridge writing into state and regions.
func New(state *session.State, regions *ui.Regions, source Source) *Bridge {
	return &Bridge{
		state:   state,
		regions: regions,
		source:  source,
		random:  rand.Float64,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// SetRandom replaces the random number source for the changing value.
func (b *Bridge) SetRandom(fn func() float64) {
	b.random = fn
}

// Fragment wraps Tick for a ui.Scheduler.
func (b *Bridge) Fragment(every, timeout time.Duration) ui.Fragment {
	return ui.Fragment{
		Name:     FragmentName,
		RunEvery: every,
		Timeout:  timeout,
		Run:      b.Tick,
	}
}

// Tick performs one bridge cycle.
//
// Slot 1 always receives a new random value. If the source fails, slot 2
// and session.KeyPicoMsg are left untouched and the error is returned.
func (b *Bridge) Tick(ctx context.Context) error {
	changing, err := b.slot(session.KeyPlaceholder1)
	if err != nil {
		return err
	}
	message, err := b.slot(session.KeyPlaceholder2)
	if err != nil {
		return err
	}

	changing.SetText(ChangingValuePrefix + strconv.FormatFloat(b.random(), 'f', -1, 64))

	payload, ok, err := b.source.Receive(ctx)
	if err != nil {
		return fmt.Errorf("receiving inbound message: %w", err)
	}
	if ok {
		b.state.Set(session.KeyPicoMsg, string(payload))
		b.logger.Debug("inbound message stored", "bytes", len(payload))
	}

	msg, err := b.state.String(session.KeyPicoMsg)
	if err != nil {
		msg = session.DefaultPicoMsg
	}
	message.SetText(PicoMessagePrefix + msg)
	return nil
}

// slot resolves the region whose ID is stored under key.
func (b *Bridge) slot(key string) (*ui.Region, error) {
	id, err := b.state.String(key)
	if err != nil || id == "" {
		return nil, fmt.Errorf("%w: %s", ErrSlotMissing, key)
	}
	r, err := b.regions.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSlotMissing, key, err)
	}
	return r, nil
}
