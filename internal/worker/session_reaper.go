package worker

import (
	"context"
	"log/slog"
	"time"
)

// SessionStore is the part of the application store the reaper needs
type SessionStore interface {
	ExpireSession(maxAge time.Duration) bool
}

// SessionReaper ends the signed-in session once its token can no longer be valid,
// so the server stops reporting a user whose credentials have lapsed
type SessionReaper struct {
	store    SessionStore
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionReaper creates a reaper that checks every interval for sessions older than maxAge
func NewSessionReaper(store SessionStore, maxAge, interval time.Duration, logger *slog.Logger) *SessionReaper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionReaper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the reaper loop until ctx is done
func (w *SessionReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("session reaper started",
		slog.Duration("interval", w.interval),
		slog.Duration("max_age", w.maxAge),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session reaper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionReaper) sweep() {
	if w.store.ExpireSession(w.maxAge) {
		w.logger.Info("expired session closed", slog.Duration("max_age", w.maxAge))
	}
}
