package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/pico-bridge/internal/bridge"
	"github.com/nerrad567/pico-bridge/internal/connection"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/publisher"
	"github.com/nerrad567/pico-bridge/internal/session"
	"github.com/nerrad567/pico-bridge/internal/ui"
)

// ConnProvider hands out the shared broker connection.
// *connection.Manager satisfies it.
type ConnProvider interface {
	Get(ctx context.Context) (connection.Conn, error)
}

// Notifier pushes updates to the browser.
type Notifier interface {
	// Patch delivers a region update for one session.
	Patch(sessionID string, p ui.Patch)
	// Render delivers a full page for one session.
	Render(sessionID string, page *ui.Node)
}

// Telemetry records inbound messages and publish outcomes.
type Telemetry interface {
	bridge.Recorder
	publisher.Recorder
}

// Logger defines the logging interface used by the dashboard.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopNotifier struct{}

func (noopNotifier) Patch(string, ui.Patch)  {}
func (noopNotifier) Render(string, *ui.Node) {}

// Deps holds the App's collaborators. Config, Conns and Store are required.
type Deps struct {
	Config    *config.Config
	Conns     ConnProvider
	Store     *session.Store
	Feed      *bridge.Feed // required in poll mode
	Notifier  Notifier
	Telemetry Telemetry
	Logger    Logger

	// NewSource overrides the configured bridge source for every session.
	NewSource func() bridge.Source
}

// App runs the page script for every session.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type App struct {
	cfg       *config.Config
	conns     ConnProvider
	store     *session.Store
	feed      *bridge.Feed
	notifier  Notifier
	telemetry Telemetry
	logger    Logger
	newSource func() bridge.Source
	command   *publisher.Command

	mu       sync.Mutex
	ctx      context.Context
	runtimes map[string]*Runtime
	closed   bool
}

// NewApp creates an App. Fragments run under ctx; cancelling it stops them.
func NewApp(ctx context.Context, deps Deps) (*App, error) {
	if deps.Config == nil || deps.Conns == nil || deps.Store == nil {
		return nil, fmt.Errorf("dashboard: config, connection provider and store are required")
	}
	if deps.Config.Bridge.Mode == config.BridgeModePoll && deps.Feed == nil && deps.NewSource == nil {
		return nil, fmt.Errorf("dashboard: poll mode requires a feed")
	}

	a := &App{
		cfg:       deps.Config,
		conns:     deps.Conns,
		store:     deps.Store,
		feed:      deps.Feed,
		notifier:  deps.Notifier,
		telemetry: deps.Telemetry,
		logger:    deps.Logger,
		newSource: deps.NewSource,
		ctx:       ctx,
		runtimes:  make(map[string]*Runtime),
	}
	if a.notifier == nil {
		a.notifier = noopNotifier{}
	}
	if a.logger == nil {
		a.logger = noopLogger{}
	}

	a.command = publisher.New(a.cfg.Topics.Outbound, byte(a.cfg.MQTT.QoS), a.publisherConn)
	a.command.SetLogger(a.logger)
	if a.telemetry != nil {
		a.command.SetRecorder(a.telemetry)
		if a.feed != nil {
			a.feed.SetRecorder(a.telemetry)
		}
	}

	a.store.SetOnExpire(a.release)
	return a, nil
}

// publisherConn adapts ConnProvider to publisher.ConnFunc.
func (a *App) publisherConn(ctx context.Context) (publisher.Publisher, error) {
	conn, err := a.conns.Get(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Open starts a new session and returns its Runtime.
func (a *App) Open() (*Runtime, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrRuntimeClosed
	}

	sess := a.store.Create()
	rt := newRuntime(a, sess)
	a.runtimes[sess.ID] = rt
	a.logger.Info("session opened", "session_id", sess.ID)
	return rt, nil
}

// Runtime returns the Runtime for a live session and marks it active.
// Returns session.ErrNotFound for unknown or expired sessions.
func (a *App) Runtime(id string) (*Runtime, error) {
	if _, err := a.store.Get(id); err != nil {
		return nil, err
	}

	a.mu.Lock()
	rt, ok := a.runtimes[id]
	a.mu.Unlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	return rt, nil
}

// Close ends a session.
func (a *App) Close(id string) error {
	return a.store.Delete(id)
}

// Sessions returns the number of open sessions.
func (a *App) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.runtimes)
}

// release stops the runtime of an ended session. It is the store's
// expiry callback.
func (a *App) release(id string) {
	a.mu.Lock()
	rt, ok := a.runtimes[id]
	delete(a.runtimes, id)
	a.mu.Unlock()

	if ok {
		rt.stop()
		a.logger.Info("session closed", "session_id", id)
	}
}

// Shutdown stops every runtime and the inbound feed.
func (a *App) Shutdown() {
	a.mu.Lock()
	a.closed = true
	runtimes := make([]*Runtime, 0, len(a.runtimes))
	for id, rt := range a.runtimes {
		runtimes = append(runtimes, rt)
		delete(a.runtimes, id)
	}
	a.mu.Unlock()

	for _, rt := range runtimes {
		rt.stop()
	}
	if a.feed != nil {
		if err := a.feed.Stop(); err != nil {
			a.logger.Warn("stopping inbound feed", "error", err)
		}
	}
}

// source builds the bridge source for a new session.
func (a *App) source() (bridge.Source, *bridge.Inbox) {
	if a.newSource != nil {
		return a.newSource(), nil
	}
	if a.cfg.Bridge.Mode == config.BridgeModeOneshot {
		src := bridge.NewOneshotSource(a.cfg.MQTT, a.cfg.Topics.Inbound, a.cfg.Bridge.OneshotTimeout)
		if a.telemetry != nil {
			return &recordingSource{src: src, topic: a.cfg.Topics.Inbound, rec: a.telemetry}, nil
		}
		return src, nil
	}
	inbox := a.feed.Attach(a.cfg.Bridge.BufferSize)
	return inbox, inbox
}

// recordingSource reports every received payload to telemetry.
type recordingSource struct {
	src   bridge.Source
	topic string
	rec   bridge.Recorder
}

func (s *recordingSource) Receive(ctx context.Context) ([]byte, bool, error) {
	payload, ok, err := s.src.Receive(ctx)
	if err == nil && ok {
		s.rec.RecordInbound(s.topic, payload)
	}
	return payload, ok, err
}
