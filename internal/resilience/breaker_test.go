package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edgard/construfacil/internal/resilience"
)

var errBoom = errors.New("boom")

func TestBreakers_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreakers(resilience.Settings{MaxFailures: 2, Cooldown: time.Hour}, nil)
	calls := 0
	fail := func() error { calls++; return errBoom }

	for i := 0; i < 2; i++ {
		if err := b.Execute("a", fail); !errors.Is(err, errBoom) {
			t.Fatalf("Execute() #%d error = %v, want errBoom", i, err)
		}
	}
	if err := b.Execute("a", fail); !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("Execute() on open breaker error = %v, want ErrOpen", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if got := b.State("a"); got != "open" {
		t.Errorf("State(a) = %q, want open", got)
	}
	if got := b.State("b"); got != "closed" {
		t.Errorf("State(b) = %q, want closed", got)
	}
	if err := b.Execute("b", func() error { return nil }); err != nil {
		t.Errorf("Execute(b) error = %v, breakers must be independent", err)
	}
}

func TestBreakers_HalfOpenAfterCooldown(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreakers(resilience.Settings{MaxFailures: 1, Cooldown: 20 * time.Millisecond}, nil)
	_ = b.Execute("a", func() error { return errBoom })
	if err := b.Execute("a", func() error { return nil }); !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("Execute() error = %v, want ErrOpen", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := b.Execute("a", func() error { return nil }); err != nil {
		t.Fatalf("Execute() after cooldown error = %v", err)
	}
	if got := b.State("a"); got != "closed" {
		t.Errorf("State(a) = %q, want closed after a successful probe", got)
	}
}

func TestBreakers_CancellationIsNotAFailure(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreakers(resilience.Settings{MaxFailures: 1}, nil)
	for i := 0; i < 3; i++ {
		if err := b.Execute("a", func() error { return context.Canceled }); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
	}
	if got := b.State("a"); got != "closed" {
		t.Errorf("State(a) = %q, want closed", got)
	}
}

func TestBreakers_Disabled(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreakers(resilience.Settings{}, nil)
	if b.Enabled() {
		t.Fatal("Enabled() = true for zero MaxFailures")
	}
	calls := 0
	for i := 0; i < 10; i++ {
		_ = b.Execute("a", func() error { calls++; return errBoom })
	}
	if calls != 10 {
		t.Errorf("calls = %d, want every call to run", calls)
	}
}
