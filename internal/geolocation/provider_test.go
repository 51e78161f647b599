package geolocation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/reliability/circuitbreaker"
)

type sourceFunc func(ctx context.Context, opts Options) (domain.Coordinates, error)

func (f sourceFunc) Position(ctx context.Context, opts Options) (domain.Coordinates, error) {
	return f(ctx, opts)
}

func shortOptions() Options {
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Zero(t, opts.MaximumAge)
	assert.True(t, opts.HighAccuracy)
}

func TestRequestWithoutSourceIsUnsupported(t *testing.T) {
	p := NewProvider(nil, DefaultOptions(), nil)

	res, ok := <-p.Request(context.Background())
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, ErrUnsupported)

	_, open := <-p.Request(context.Background())
	assert.True(t, open, "every request yields a result")
}

func TestRequestDeliversExactlyOneResult(t *testing.T) {
	want := domain.Coordinates{Latitude: 24.7136, Longitude: 46.6753}
	p := NewProvider(StaticSource{Coordinates: want}, DefaultOptions(), nil)

	ch := p.Request(context.Background())
	res := <-ch
	require.NoError(t, res.Err)
	assert.Equal(t, want, res.Coordinates)

	_, open := <-ch
	assert.False(t, open)
}

func TestRequestTimesOut(t *testing.T) {
	blocking := sourceFunc(func(ctx context.Context, _ Options) (domain.Coordinates, error) {
		<-ctx.Done()
		return domain.Coordinates{}, ctx.Err()
	})
	p := NewProvider(blocking, shortOptions(), nil)

	_, err := p.Locate(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRequestTimesOutWhenSourceIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := sourceFunc(func(context.Context, Options) (domain.Coordinates, error) {
		<-release
		return domain.Coordinates{}, nil
	})
	p := NewProvider(stuck, shortOptions(), nil)

	_, err := p.Locate(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRequestsAreIndependent(t *testing.T) {
	var calls atomic.Int32
	src := sourceFunc(func(context.Context, Options) (domain.Coordinates, error) {
		n := calls.Add(1)
		return domain.Coordinates{Latitude: float64(n)}, nil
	})
	p := NewProvider(src, DefaultOptions(), nil)

	first := p.Request(context.Background())
	second := p.Request(context.Background())
	a, b := <-first, <-second

	require.NoError(t, a.Err)
	require.NoError(t, b.Err)
	assert.NotEqual(t, a.Coordinates, b.Coordinates)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSourceErrorsAreTyped(t *testing.T) {
	denied := sourceFunc(func(context.Context, Options) (domain.Coordinates, error) {
		return domain.Coordinates{}, ErrPermissionDenied
	})
	_, err := NewProvider(denied, DefaultOptions(), nil).Locate(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	broken := sourceFunc(func(context.Context, Options) (domain.Coordinates, error) {
		return domain.Coordinates{}, errors.New("gps offline")
	})
	_, err = NewProvider(broken, DefaultOptions(), nil).Locate(context.Background())
	assert.ErrorIs(t, err, ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "gps offline")
}

func TestIPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":21.4858,"lon":39.1925}`))
	}))
	defer srv.Close()

	p := NewProvider(NewIPSource(srv.URL, nil), DefaultOptions(), nil)
	coords, err := p.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Latitude: 21.4858, Longitude: 39.1925}, coords)
}

func TestIPSourceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, ``, ErrPermissionDenied},
		{"server error", http.StatusBadGateway, ``, ErrPositionUnavailable},
		{"lookup failed", http.StatusOK, `{"status":"fail","message":"private range"}`, ErrPositionUnavailable},
		{"garbage", http.StatusOK, `not json`, ErrPositionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProvider(NewIPSource(srv.URL, nil), DefaultOptions(), nil).Locate(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIPSourceStopsCallingFailingService(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProvider(NewIPSource(srv.URL, nil), DefaultOptions(), nil)
	for i := 0; i < ipBreakerFailures+3; i++ {
		_, err := p.Locate(context.Background())
		assert.ErrorIs(t, err, ErrPositionUnavailable)
	}
	assert.Equal(t, int32(ipBreakerFailures), hits.Load())
}

func TestIPSourceCancellationIsNotAnOutage(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	source := NewIPSource(srv.URL, nil)
	for i := 0; i < ipBreakerFailures+2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := source.Position(ctx, DefaultOptions())
		require.Error(t, err)
		cancel()
	}

	assert.Equal(t, circuitbreaker.StateClosed, source.breaker.State())
	assert.Equal(t, int32(ipBreakerFailures+2), hits.Load())
}

func TestReported(t *testing.T) {
	lat, lon := 24.1, 46.2
	res := Reported(Reading{Latitude: &lat, Longitude: &lon})
	require.NoError(t, res.Err)
	assert.Equal(t, domain.Coordinates{Latitude: lat, Longitude: lon}, res.Coordinates)

	code := CodePermissionDenied
	assert.ErrorIs(t, Reported(Reading{ErrorCode: &code}).Err, ErrPermissionDenied)
	assert.ErrorIs(t, Reported(Reading{Latitude: &lat}).Err, ErrPositionUnavailable)

	bad := 123.0
	assert.ErrorIs(t, Reported(Reading{Latitude: &bad, Longitude: &lon}).Err, ErrPositionUnavailable)
}

func TestCodesRoundTrip(t *testing.T) {
	for _, code := range []int{CodeUnsupported, CodePermissionDenied, CodePositionUnavailable, CodeTimeout} {
		assert.Equal(t, code, Code(FromCode(code)))
	}
	assert.Equal(t, "location_timeout", MessageKey(ErrTimeout))
	assert.Equal(t, "location_success", MessageKey(nil))
}
