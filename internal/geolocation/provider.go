// Package geolocation resolves the caller's current coordinates.
//
// Every Request is an independent one-shot lookup: concurrent calls are not
// coalesced, no cached reading is reused, and each lookup is bounded by the
// provider timeout. Failures are reported as one of the typed errors below.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
)

var (
	ErrUnsupported         = errors.New("geolocation is not supported")
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("geolocation request timed out")
)

// Options tune a lookup
type Options struct {
	Timeout      time.Duration
	MaximumAge   time.Duration
	HighAccuracy bool
}

// DefaultOptions: 10 second timeout, no cached readings, high accuracy
func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		MaximumAge:   0,
		HighAccuracy: true,
	}
}

// Source produces a position reading
type Source interface {
	Position(ctx context.Context, opts Options) (domain.Coordinates, error)
}

// Result is the outcome of one request
type Result struct {
	Coordinates domain.Coordinates
	Err         error
}

// Provider runs lookups against a Source
type Provider struct {
	source Source
	opts   Options
	logger *slog.Logger
}

// NewProvider creates a provider. A nil source makes every request fail with ErrUnsupported.
func NewProvider(source Source, opts Options, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Provider{source: source, opts: opts, logger: logger}
}

// Request starts an independent lookup. The returned channel yields exactly one Result and is then closed.
func (p *Provider) Request(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)

	if p.source == nil {
		p.finish(out, Result{Err: ErrUnsupported})
		return out
	}

	go func() {
		ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()

		done := make(chan Result, 1)
		go func() {
			coords, err := p.source.Position(ctx, p.opts)
			done <- Result{Coordinates: coords, Err: err}
		}()

		var res Result
		select {
		case res = <-done:
			res.Err = classify(ctx, res.Err)
		case <-ctx.Done():
			res = Result{Err: classify(ctx, ctx.Err())}
		}
		p.finish(out, res)
	}()

	return out
}

// Locate runs one request and waits for it
func (p *Provider) Locate(ctx context.Context) (domain.Coordinates, error) {
	res := <-p.Request(ctx)
	return res.Coordinates, res.Err
}

func (p *Provider) finish(out chan<- Result, res Result) {
	if res.Err != nil {
		metrics.ObserveGeolocation(MessageKey(res.Err))
		p.logger.Debug("geolocation request failed", slog.String("error", res.Err.Error()))
	} else {
		metrics.ObserveGeolocation("success")
	}
	out <- res
	close(out)
}

// classify maps arbitrary source errors onto the typed failures
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	for _, typed := range []error{ErrUnsupported, ErrPermissionDenied, ErrPositionUnavailable, ErrTimeout} {
		if errors.Is(err, typed) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
}
