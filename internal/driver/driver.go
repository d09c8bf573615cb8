// Package driver runs the clocks of a game session: the one second
// countdown, the delayed automatic advance and the end of the reveal
// animation. Timers are armed and disarmed from session snapshots so the
// driver never holds state of its own beyond its timers.
package driver

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerderby/internal/game"
)

// Defaults used when no option overrides them
const (
	DefaultTickInterval   = time.Second
	DefaultAdvanceDelay   = time.Second
	DefaultRevealDuration = 2 * time.Second
)

// Game is the part of a session the driver operates
type Game interface {
	Tick()
	AutoAdvance() bool
	SetAnimationState(animating bool)
	Status() game.Status
	Subscribe(fn game.Observer) (cancel func())
}

// Option configures a Driver
type Option func(*Driver)

// WithTickInterval sets how often the countdown ticks
func WithTickInterval(d time.Duration) Option {
	return func(dr *Driver) { dr.tickInterval = d }
}

// WithAdvanceDelay sets how long a round lingers once it may advance
func WithAdvanceDelay(d time.Duration) Option {
	return func(dr *Driver) { dr.advanceDelay = d }
}

// WithRevealDuration sets how long the reveal animation runs after a round
// advances. Zero leaves the animation to the presentation layer.
func WithRevealDuration(d time.Duration) Option {
	return func(dr *Driver) { dr.revealDuration = d }
}

// WithLogger sets the driver logger
func WithLogger(logger *log.Logger) Option {
	return func(dr *Driver) { dr.logger = logger.WithPrefix("driver") }
}

// Driver keeps a session's clocks running
type Driver struct {
	game   Game
	clock  quartz.Clock
	logger *log.Logger

	tickInterval   time.Duration
	advanceDelay   time.Duration
	revealDuration time.Duration

	mu      sync.Mutex
	running bool
	cancel  func()
	tick    timer
	advance timer
	reveal  timer
}

// timer is an armed callback. gen invalidates callbacks that fire after
// the timer was stopped.
type timer struct {
	t   *quartz.Timer
	gen uint64
}

func (t *timer) armed() bool { return t.t != nil }

func (t *timer) stop() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	t.gen++
}

// New creates a stopped driver for g
func New(g Game, clock quartz.Clock, opts ...Option) *Driver {
	d := &Driver{
		game:           g,
		clock:          clock,
		logger:         log.New(io.Discard),
		tickInterval:   DefaultTickInterval,
		advanceDelay:   DefaultAdvanceDelay,
		revealDuration: DefaultRevealDuration,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start subscribes to the session and arms whatever timers its state calls
// for. Starting a running driver does nothing.
func (d *Driver) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	cancel := d.game.Subscribe(func(game.Snapshot) { d.reconcile() })

	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.logger.Debug("Driver started")
	d.reconcile()
}

// Stop disarms every timer and unsubscribes from the session
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.cancel = nil
	d.stopAllLocked()
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.logger.Debug("Driver stopped")
}

// Run starts the driver and stops it when ctx is done
func (d *Driver) Run(ctx context.Context) error {
	d.Start()
	<-ctx.Done()
	d.Stop()
	return nil
}

// reconcile arms or disarms each timer to match the session status. The
// status is read under d.mu so concurrent reconciles apply in order; the
// session never calls back into the driver while holding its own lock.
func (d *Driver) reconcile() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		d.stopAllLocked()
		return
	}

	st := d.game.Status()
	if st.Finished {
		d.stopAllLocked()
		return
	}

	wantTick := st.TimeRemaining > 0 && !st.Animating && !st.ShouldAdvance
	switch {
	case wantTick && !d.tick.armed():
		d.armLocked(&d.tick, d.tickInterval, d.game.Tick)
	case !wantTick && d.tick.armed():
		d.tick.stop()
	}

	switch {
	case st.ShouldAdvance && !d.advance.armed():
		d.armLocked(&d.advance, d.advanceDelay, d.autoAdvance)
	case !st.ShouldAdvance && d.advance.armed():
		d.advance.stop()
	}

	wantReveal := st.Animating && d.revealDuration > 0
	switch {
	case wantReveal && !d.reveal.armed():
		d.armLocked(&d.reveal, d.revealDuration, func() { d.game.SetAnimationState(false) })
	case !wantReveal && d.reveal.armed():
		d.reveal.stop()
	}
}

func (d *Driver) armLocked(t *timer, after time.Duration, fn func()) {
	t.gen++
	gen := t.gen
	t.t = d.clock.AfterFunc(after, func() {
		d.mu.Lock()
		if !d.running || t.gen != gen {
			d.mu.Unlock()
			return
		}
		t.t = nil
		d.mu.Unlock()

		// The session publishes a snapshot for every call, which
		// re-arms through reconcile.
		fn()
	})
}

func (d *Driver) autoAdvance() {
	if d.game.AutoAdvance() {
		st := d.game.Status()
		d.logger.Debug("Round advanced", "round", st.Round, "finished", st.Finished)
	}
}

func (d *Driver) stopAllLocked() {
	d.tick.stop()
	d.advance.stop()
	d.reveal.stop()
}
