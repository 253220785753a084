// Package circuitbreaker stops the updater from hammering a gateway host
// that keeps failing. One breaker guards one host; a Registry hands out
// breakers keyed by host so failures observed while resolving one source
// short-circuit candidates on the same host for later sources.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/alorle/m3u-updater/logging"
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed means requests flow normally
	StateClosed State = iota
	// StateOpen means requests are rejected without being attempted
	StateOpen
	// StateHalfOpen means a single probe request is allowed through
	StateHalfOpen
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpen is returned by Allow when the breaker is rejecting requests.
var ErrOpen = errors.New("circuit breaker is open")

// Config contains the tunables for a breaker.
type Config struct {
	FailureThreshold int             // consecutive failures before opening
	Cooldown         time.Duration   // time in OPEN before allowing a probe
	Logger           *logging.Logger // optional, logs state transitions
}

// Breaker is a three-state circuit breaker for one host.
type Breaker struct {
	mu       sync.Mutex
	cfg      Config
	host     string
	state    State
	failures int
	openedAt time.Time
	now      func() time.Time
}

// New creates a breaker for the given host, filling in defaults for zero
// config values.
func New(host string, cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{cfg: cfg, host: host, now: time.Now}
}

// Allow reports whether a request may be attempted right now. It returns
// ErrOpen while the breaker is open and inside its cooldown window; after
// the cooldown it transitions to HALF-OPEN and lets one probe through.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	return nil
}

// RecordSuccess resets the breaker to CLOSED.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// RecordFailure counts one failure. A HALF-OPEN probe failure reopens
// immediately; in CLOSED the breaker opens once the threshold is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.cfg.FailureThreshold) {
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

// State returns the current state of the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition changes state and logs it. Caller must hold b.mu.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if b.cfg.Logger != nil {
		b.cfg.Logger.Debug("circuit breaker state change", map[string]interface{}{
			"host": b.host,
			"from": from.String(),
			"to":   to.String(),
		})
	}
}

// Registry hands out one Breaker per host.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	breakers map[string]*Breaker
}

// NewRegistry creates a registry whose breakers share cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// For returns the breaker guarding host, creating it on first use.
func (r *Registry) For(host string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[host]
	if !ok {
		b = New(host, r.cfg)
		r.breakers[host] = b
	}
	return b
}
