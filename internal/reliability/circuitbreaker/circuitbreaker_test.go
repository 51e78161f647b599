package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New(3, time.Minute)

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("attempt %d rejected: %v", i, err)
		}
		b.Record(false)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed below threshold, got %s", b.State())
	}

	_ = b.Allow()
	b.Record(false)
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := New(2, time.Minute)

	_ = b.Allow()
	b.Record(false)
	_ = b.Allow()
	b.Record(true)
	_ = b.Allow()
	b.Record(false)

	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %s", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(1, 30*time.Second)
	b.now = func() time.Time { return clock }

	var transitions []string
	b.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = b.Allow()
	b.Record(false)

	clock = clock.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("second concurrent probe should be rejected, got %v", err)
	}

	b.Record(false)
	if b.State() != StateOpen {
		t.Fatalf("failed probe should reopen, got %s", b.State())
	}

	clock = clock.Add(31 * time.Second)
	_ = b.Allow()
	b.Record(true)
	if b.State() != StateClosed {
		t.Fatalf("successful probe should close, got %s", b.State())
	}

	want := []string{"closed->open", "open->half_open", "half_open->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions %v, want %v", transitions, want)
		}
	}
}

func TestBreakerReleaseFreesHalfOpenSlot(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(1, time.Second)
	b.now = func() time.Time { return clock }

	_ = b.Allow()
	b.Record(false)
	clock = clock.Add(2 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	b.Release()
	if b.State() != StateHalfOpen {
		t.Fatalf("release must not change state, got %s", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("released slot should be free again: %v", err)
	}
}
