package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingStore struct {
	calls  atomic.Int32
	maxAge atomic.Int64
}

func (s *countingStore) ExpireSession(maxAge time.Duration) bool {
	s.calls.Add(1)
	s.maxAge.Store(int64(maxAge))
	return true
}

func TestSessionReaperSweepsUntilCancelled(t *testing.T) {
	store := &countingStore{}
	reaper := NewSessionReaper(store, time.Hour, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Start(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for store.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("reaper swept %d times, want at least 2", store.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}

	if got := time.Duration(store.maxAge.Load()); got != time.Hour {
		t.Fatalf("expected max age 1h, got %v", got)
	}
}

func TestNewSessionReaperDefaultsInterval(t *testing.T) {
	reaper := NewSessionReaper(&countingStore{}, time.Hour, 0, nil)
	if reaper.interval != time.Minute {
		t.Fatalf("expected default interval 1m, got %v", reaper.interval)
	}
}
