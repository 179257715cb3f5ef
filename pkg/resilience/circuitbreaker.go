// Package resilience provides the circuit breaker and retry primitives used
// around remote collaborators.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is a breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerOpts configures a Breaker. Zero fields take DefaultBreakerOpts.
type BreakerOpts struct {
	// FailThreshold consecutive failures open the circuit.
	FailThreshold int
	// Timeout is how long the circuit stays open before a trial is allowed.
	Timeout time.Duration
	// HalfOpenMax bounds concurrent trials while half-open.
	HalfOpenMax int
	// IsFailure selects the errors that count. Other errors pass through
	// without touching the state. Nil counts every error.
	IsFailure func(error) bool
	// OnStateChange, if set, is called after every transition with the
	// breaker lock released.
	OnStateChange func(from, to State)
}

var DefaultBreakerOpts = BreakerOpts{
	FailThreshold: 5,
	Timeout:       30 * time.Second,
	HalfOpenMax:   1,
}

// Breaker guards calls to a collaborator that may be down.
type Breaker struct {
	opts BreakerOpts
	now  func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trials   int
}

func NewBreaker(opts BreakerOpts) *Breaker {
	if opts.FailThreshold <= 0 {
		opts.FailThreshold = DefaultBreakerOpts.FailThreshold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBreakerOpts.Timeout
	}
	if opts.HalfOpenMax <= 0 {
		opts.HalfOpenMax = DefaultBreakerOpts.HalfOpenMax
	}
	if opts.IsFailure == nil {
		opts.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State reports the current position, moving open to half-open once the
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.state, b.refresh()
	b.mu.Unlock()
	b.notify(from, to)
	return to
}

// Call runs f unless the circuit is open.
func (b *Breaker) Call(ctx context.Context, f func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := f(ctx)
	b.settle(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	from, to := b.state, b.refresh()
	var err error
	switch to {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.trials >= b.opts.HalfOpenMax {
			err = ErrCircuitOpen
		} else {
			b.trials++
		}
	}
	b.mu.Unlock()
	b.notify(from, to)
	return err
}

func (b *Breaker) settle(err error) {
	b.mu.Lock()
	from := b.state
	switch {
	case err != nil && b.opts.IsFailure(err):
		b.failures++
		if from == StateHalfOpen || b.failures >= b.opts.FailThreshold {
			b.trip()
		}
	case err != nil && from == StateHalfOpen:
		// Not an outage: release the trial slot without deciding.
		b.trials--
	case err != nil:
	default:
		b.state = StateClosed
		b.failures = 0
		b.trials = 0
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// refresh must be called with mu held.
func (b *Breaker) refresh() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Timeout {
		b.state = StateHalfOpen
		b.trials = 0
	}
	return b.state
}

// trip must be called with mu held.
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
	b.trials = 0
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.opts.OnStateChange != nil {
		b.opts.OnStateChange(from, to)
	}
}
