package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/pico-bridge/internal/bridge"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/session"
	"github.com/nerrad567/pico-bridge/internal/ui"
)

// Runtime is one session's page instance.
//
// Thread Safety:
//   - Render and Change are serialised; only one runs at a time.
//   - The bridge fragment runs concurrently on the Runtime's scheduler.
type Runtime struct {
	app     *App
	sess    *session.Session
	regions *ui.Regions
	sched   *ui.Scheduler
	bridge  *bridge.Bridge
	inbox   *bridge.Inbox

	mu      sync.Mutex
	started bool
	closed  bool
	renders int
}

func newRuntime(a *App, sess *session.Session) *Runtime {
	rt := &Runtime{
		app:   a,
		sess:  sess,
		sched: ui.NewScheduler(),
	}
	rt.regions = ui.NewRegions(func(p ui.Patch) {
		a.notifier.Patch(sess.ID, p)
	})

	src, inbox := a.source()
	rt.inbox = inbox
	rt.bridge = bridge.New(sess.State, rt.regions, src)
	rt.bridge.SetLogger(a.logger)
	rt.sched.SetLogger(a.logger)
	return rt
}

// ID returns the session ID.
func (rt *Runtime) ID() string {
	return rt.sess.ID
}

// State returns the session state.
func (rt *Runtime) State() *session.State {
	return rt.sess.State
}

// Renders returns how many full renders have run.
func (rt *Runtime) Renders() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.renders
}

// Render runs the page script and returns the page.
func (rt *Runtime) Render(ctx context.Context) (*ui.Node, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.render(ctx)
}

// render runs the page script. Caller holds rt.mu.
func (rt *Runtime) render(ctx context.Context) (*ui.Node, error) {
	if rt.closed {
		return nil, ErrRuntimeClosed
	}

	rt.initState()
	page := rt.buildPage()
	rt.renders++

	rt.ensureFeed(ctx)
	if !rt.started {
		rt.start()
	}

	// The fragment also runs as part of a full render, without blocking it.
	if err := rt.sched.Trigger(bridge.FragmentName); err != nil {
		rt.app.logger.Warn("triggering bridge fragment", "session_id", rt.sess.ID, "error", err)
	}
	return page, nil
}

// start registers and starts the bridge fragment. Caller holds rt.mu.
func (rt *Runtime) start() {
	rt.started = true
	a := rt.app

	frag := rt.bridge.Fragment(a.cfg.UI.RefreshInterval, rt.fragmentTimeout())
	frag.Run = rt.Tick
	if err := rt.sched.Add(frag); err != nil {
		a.logger.Error("registering bridge fragment", "session_id", rt.sess.ID, "error", err)
		return
	}
	rt.sched.Start(a.ctx)
}

// ensureFeed subscribes the shared inbound feed until it is active. A
// failed subscribe is retried on the next render or bridge tick.
// Connection failures are logged by the connection manager and leave the
// page usable.
func (rt *Runtime) ensureFeed(ctx context.Context) {
	a := rt.app
	if rt.inbox == nil || a.feed == nil || a.feed.Started() {
		return
	}

	conn, err := a.conns.Get(ctx)
	if err != nil {
		return
	}
	if err := a.feed.Start(conn); err != nil && !errors.Is(err, bridge.ErrFeedStopped) {
		a.logger.Warn("starting inbound feed", "session_id", rt.sess.ID, "error", err)
	}
}

// fragmentTimeout bounds one bridge tick.
func (rt *Runtime) fragmentTimeout() time.Duration {
	cfg := rt.app.cfg
	if cfg.Bridge.Mode == config.BridgeModeOneshot && cfg.Bridge.OneshotTimeout > 0 {
		return cfg.Bridge.OneshotTimeout
	}
	return cfg.UI.RefreshInterval
}

// Change applies a widget input, runs the widget's change callback and
// re-renders the page. The new page is also pushed to the Notifier.
func (rt *Runtime) Change(ctx context.Context, key string, value any) (*ui.Node, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil, ErrRuntimeClosed
	}
	// A change can arrive before the first render.
	rt.initState()

	switch key {
	case session.KeySlider:
		n, err := rt.sliderValue(value)
		if err != nil {
			return nil, err
		}
		// The publisher fires on a change of value, not on every input.
		prev, err := rt.sess.State.Int(session.KeySlider)
		rt.sess.State.Set(session.KeySlider, n)
		if err != nil || prev != n {
			rt.app.command.OnChange(ctx, rt.sess.State)
		}

	case session.KeySystemState:
		s, ok := value.(string)
		if !ok || !slices.Contains(rt.app.cfg.UI.RadioOptions, s) {
			return nil, fmt.Errorf("%w: %s must be one of %v", ErrInvalidValue, key, rt.app.cfg.UI.RadioOptions)
		}
		rt.sess.State.Set(session.KeySystemState, s)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, key)
	}

	page, err := rt.render(ctx)
	if err != nil {
		return nil, err
	}
	rt.app.notifier.Render(rt.sess.ID, page)
	return page, nil
}

// sliderValue converts a decoded widget value to an in-range integer.
func (rt *Runtime) sliderValue(value any) (int, error) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: slider value %v is not an integer", ErrInvalidValue, v)
		}
		n = int(v)
	case json.Number:
		i, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("%w: slider value %q is not an integer", ErrInvalidValue, v)
		}
		n = i
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: slider value %q is not an integer", ErrInvalidValue, v)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: slider value has type %T", ErrInvalidValue, value)
	}

	s := rt.app.cfg.UI.Slider
	if n < s.Min || n > s.Max {
		return 0, fmt.Errorf("%w: slider value %d outside %d..%d", ErrInvalidValue, n, s.Min, s.Max)
	}
	return n, nil
}

// Tick runs the bridge once. The scheduler calls it on every interval;
// tests call it directly.
func (rt *Runtime) Tick(ctx context.Context) error {
	rt.ensureFeed(ctx)
	return rt.bridge.Tick(ctx)
}

// FragmentStats returns the bridge fragment's counters.
func (rt *Runtime) FragmentStats() (ui.Stats, error) {
	return rt.sched.Stats(bridge.FragmentName)
}

// Region returns the current content of a display region.
func (rt *Runtime) Region(id string) (string, error) {
	r, err := rt.regions.Lookup(id)
	if err != nil {
		return "", err
	}
	text, _ := r.Content()
	return text, nil
}

// stop halts the fragment scheduler and detaches from the feed.
func (rt *Runtime) stop() {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return
	}
	rt.closed = true
	rt.mu.Unlock()

	rt.sched.Stop()
	if rt.inbox != nil && rt.app.feed != nil {
		rt.app.feed.Detach(rt.inbox)
	}
}

// IsClosed reports whether the session has ended.
func (rt *Runtime) IsClosed() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.closed
}
