package query_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"entmatch/internal/matcher"
	"entmatch/internal/query"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) query.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves the clock forward and runs every timer that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired && timer.at <= c.now {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, timer := range due {
		timer.f()
	}
}

type reply struct {
	outcome matcher.SingleOutcome
	err     error
}

type call struct {
	query string
	ctx   context.Context
	reply chan reply
}

// fakeMatcher hands every request to the test and blocks until the test
// replies. It ignores cancellation so late responses can be simulated.
type fakeMatcher struct {
	calls chan *call
}

func newFakeMatcher() *fakeMatcher {
	return &fakeMatcher{calls: make(chan *call, 16)}
}

func (f *fakeMatcher) MatchSingle(ctx context.Context, q string) (matcher.SingleOutcome, error) {
	c := &call{query: q, ctx: ctx, reply: make(chan reply, 1)}
	f.calls <- c
	r := <-c.reply
	return r.outcome, r.err
}

func (f *fakeMatcher) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a match request")
		return nil
	}
}

func (f *fakeMatcher) requireNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected match request for %q", c.query)
	case <-time.After(20 * time.Millisecond):
	}
}

func outcomeFor(entity string) matcher.SingleOutcome {
	return matcher.SingleOutcome{
		Query:    entity,
		TopMatch: &matcher.Candidate{Entity: entity, Confidence: 0.9},
	}
}

func waitFor(t *testing.T, ctl *query.Controller, desc string, ok func(query.Snapshot) bool) query.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := ctl.Snapshot()
		if ok(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last snapshot %+v", desc, snap)
		}
		time.Sleep(time.Millisecond)
	}
}

func inState(state query.State) func(query.Snapshot) bool {
	return func(s query.Snapshot) bool { return s.State == state }
}
