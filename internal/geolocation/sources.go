package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/reliability/circuitbreaker"
)

// StaticSource always reports the same configured position
type StaticSource struct {
	Coordinates domain.Coordinates
}

func (s StaticSource) Position(context.Context, Options) (domain.Coordinates, error) {
	return s.Coordinates, nil
}

// Lookups stop for ipBreakerCooldown after ipBreakerFailures consecutive outages
const (
	ipBreakerFailures = 5
	ipBreakerCooldown = 30 * time.Second
)

// IPSource looks up the host's approximate position from an IP geolocation service
// answering with {"status":"success","lat":..,"lon":..}.
type IPSource struct {
	endpoint string
	client   *http.Client
	breaker  *circuitbreaker.Breaker
	logger   *slog.Logger
}

// NewIPSource creates a lookup against endpoint
func NewIPSource(endpoint string, logger *slog.Logger) *IPSource {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := circuitbreaker.New(ipBreakerFailures, ipBreakerCooldown)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("geolocation lookup breaker changed state",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &IPSource{
		endpoint: endpoint,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		breaker:  breaker,
		logger:   logger,
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (s *IPSource) Position(ctx context.Context, opts Options) (domain.Coordinates, error) {
	if err := s.breaker.Allow(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	coords, err := s.lookup(ctx, opts)
	if errors.Is(ctx.Err(), context.Canceled) {
		// the caller gave up; the service was not at fault
		s.breaker.Release()
		return coords, err
	}
	// a refusal is an answer; only outages count against the service
	s.breaker.Record(err == nil || errors.Is(err, ErrPermissionDenied))
	if err != nil && !errors.Is(err, ErrPermissionDenied) {
		s.logger.Debug("geolocation lookup failed", slog.String("error", err.Error()))
	}
	return coords, err
}

func (s *IPSource) lookup(ctx context.Context, opts Options) (domain.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if opts.MaximumAge == 0 {
		req.Header.Set("Cache-Control", "no-cache")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Coordinates{}, ErrTimeout
		}
		return domain.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Coordinates{}, ErrPermissionDenied
	case resp.StatusCode != http.StatusOK:
		return domain.Coordinates{}, fmt.Errorf("%w: lookup returned %d", ErrPositionUnavailable, resp.StatusCode)
	}

	var body ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	if body.Status != "success" {
		return domain.Coordinates{}, fmt.Errorf("%w: %s", ErrPositionUnavailable, body.Message)
	}
	return domain.Coordinates{Latitude: body.Lat, Longitude: body.Lon}, nil
}
