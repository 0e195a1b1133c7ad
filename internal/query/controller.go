package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"entmatch/internal/config"
	"entmatch/internal/logging"
	"entmatch/internal/matcher"
	"entmatch/internal/services"
)

// State is the controller lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateInFlight   State = "in_flight"
	StateResolved   State = "resolved"
	StateFailed     State = "failed"
)

// Mode selects how requests are triggered.
type Mode string

const (
	ModeSubmit Mode = config.TriggerSubmit
	ModeAuto   Mode = config.TriggerAuto
)

var (
	// ErrBusy is returned by Submit while a submit-mode request is in flight.
	ErrBusy = errors.New("a search is already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("query controller closed")
)

// Matcher is the remote operation the controller dispatches.
type Matcher interface {
	MatchSingle(ctx context.Context, query string) (matcher.SingleOutcome, error)
}

// Snapshot is an immutable copy of controller state.
type Snapshot struct {
	State      State
	Text       string
	Outcome    *matcher.SingleOutcome
	Err        string
	Generation uint64
}

// Options configures a Controller.
type Options struct {
	Mode      Mode
	Debounce  time.Duration
	Scheduler Scheduler
	Logger    *slog.Logger
	// OnChange receives a snapshot after every visible state change. It runs
	// with the controller lock held and must not call back into the Controller.
	OnChange func(Snapshot)
}

// OptionsFromConfig maps the [search] section onto controller options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:     Mode(cfg.Search.Trigger),
		Debounce: cfg.Debounce(),
	}
}

// Controller owns the single-query state machine.
type Controller struct {
	matcher Matcher
	opts    Options
	base    context.Context
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	text       string
	outcome    *matcher.SingleOutcome
	errMsg     string
	generation uint64
	timer      Timer
	cancel     context.CancelFunc
	closed     bool

	inflight sync.WaitGroup
}

// New constructs a Controller. ctx bounds every request it dispatches.
func New(ctx context.Context, m Matcher, opts Options) *Controller {
	if opts.Mode == "" {
		opts.Mode = ModeSubmit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	return &Controller{
		matcher: m,
		opts:    opts,
		base:    ctx,
		logger:  logging.NewComponentLogger(opts.Logger, "query"),
		state:   StateIdle,
	}
}

// Mode reports the trigger mode.
func (c *Controller) Mode() Mode {
	return c.opts.Mode
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Input records an edit of the query text. In auto mode it (re)starts the
// debounce timer and supersedes any in-flight request. In submit mode it only
// clears the result when the text becomes empty.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.text = text

	if c.opts.Mode != ModeAuto {
		if strings.TrimSpace(text) == "" && c.state != StateInFlight && c.state != StateIdle {
			c.resetLocked()
			c.emitLocked()
		}
		return
	}

	c.supersedeLocked()
	seq := c.generation
	c.state = StateDebouncing
	c.timer = c.opts.Scheduler.AfterFunc(c.opts.Debounce, func() { c.fire(seq) })
	c.emitLocked()
}

// Submit dispatches text immediately. In submit mode it fails with ErrBusy
// while a request is in flight. Blank text returns the controller to Idle.
func (c *Controller) Submit(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.opts.Mode != ModeAuto && c.state == StateInFlight {
		return ErrBusy
	}
	c.text = text
	c.supersedeLocked()

	query := strings.TrimSpace(text)
	if query == "" {
		c.resetLocked()
		c.emitLocked()
		return nil
	}
	c.dispatchLocked(query)
	return nil
}

// Wait blocks until every dispatched request has returned. Call it from the
// goroutine that drives Input and Submit.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close stops the pending timer, cancels any in-flight request, and waits for
// it to return. Later responses are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.generation || c.state != StateDebouncing {
		return
	}
	c.timer = nil

	query := strings.TrimSpace(c.text)
	if query == "" {
		c.resetLocked()
		c.emitLocked()
		return
	}
	c.dispatchLocked(query)
}

// supersedeLocked invalidates the pending timer and any in-flight request.
func (c *Controller) supersedeLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
}

func (c *Controller) resetLocked() {
	c.state = StateIdle
	c.outcome = nil
	c.errMsg = ""
}

func (c *Controller) dispatchLocked(query string) {
	c.generation++
	gen := c.generation

	ctx := services.WithGeneration(c.base, gen)
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateInFlight

	logging.WithContext(ctx, c.logger).Debug("dispatching query", logging.String("query", query))

	c.inflight.Add(1)
	go c.run(ctx, cancel, gen, query)
	c.emitLocked()
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer c.inflight.Done()
	outcome, err := c.matcher.MatchSingle(ctx, query)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		logging.WithContext(ctx, c.logger).Debug("discarding stale response",
			logging.Uint64("current_generation", c.generation),
		)
		return
	}
	c.cancel = nil
	if err != nil {
		c.state = StateFailed
		c.outcome = nil
		c.errMsg = errorMessage(err)
	} else {
		c.state = StateResolved
		c.outcome = &outcome
		c.errMsg = ""
	}
	c.emitLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      c.state,
		Text:       c.text,
		Err:        c.errMsg,
		Generation: c.generation,
	}
	if c.outcome != nil {
		copied := *c.outcome
		copied.Alternatives = append([]matcher.Candidate(nil), c.outcome.Alternatives...)
		snap.Outcome = &copied
	}
	return snap
}

func (c *Controller) emitLocked() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.snapshotLocked())
	}
}

func errorMessage(err error) string {
	var terr *matcher.TransportError
	if errors.As(err, &terr) {
		return terr.Message
	}
	return err.Error()
}
