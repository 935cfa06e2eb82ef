// Package resilience keeps one circuit breaker per upstream dependency so a
// failing dependency is skipped until its cooldown expires.
package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned when a breaker rejects a call without running it.
var ErrOpen = errors.New("circuit breaker open")

// Settings configures every breaker in a set. A zero MaxFailures disables
// breaking and Execute always runs the operation.
type Settings struct {
	MaxFailures int
	Cooldown    time.Duration
}

// Breakers is a set of named circuit breakers created on first use.
type Breakers struct {
	settings Settings
	log      *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakers creates an empty breaker set.
func NewBreakers(settings Settings, log *slog.Logger) *Breakers {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = time.Minute
	}
	return &Breakers{
		settings: settings,
		log:      log.With("component", "circuit_breaker"),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Enabled reports whether calls are guarded at all.
func (b *Breakers) Enabled() bool {
	return b.settings.MaxFailures > 0
}

// Execute runs op through the breaker for name. Cancellation by the caller
// does not count as a failure.
func (b *Breakers) Execute(name string, op func() error) error {
	if !b.Enabled() {
		return op()
	}

	_, err := b.get(name).Execute(func() (any, error) {
		return nil, op()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State returns the state of the breaker for name ("closed" when unknown).
func (b *Breakers) State(name string) string {
	b.mu.Lock()
	cb, ok := b.breakers[name]
	b.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed.String()
	}
	return cb.State().String()
}

func (b *Breakers) get(name string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[name]; ok {
		return cb
	}

	maxFailures := uint32(b.settings.MaxFailures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     b.settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	b.breakers[name] = cb
	return cb
}
