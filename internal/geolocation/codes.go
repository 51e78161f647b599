package geolocation

import (
	"errors"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
)

// Failure codes as reported by browser clients. 0 is used for "unsupported".
const (
	CodeUnsupported         = 0
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// FromCode converts a client-reported failure code to a typed error
func FromCode(code int) error {
	switch code {
	case CodeUnsupported:
		return ErrUnsupported
	case CodePermissionDenied:
		return ErrPermissionDenied
	case CodeTimeout:
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}

// Code returns the client-facing failure code of err
func Code(err error) int {
	switch {
	case errors.Is(err, ErrUnsupported):
		return CodeUnsupported
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	default:
		return CodePositionUnavailable
	}
}

// MessageKey returns the message-table key describing err
func MessageKey(err error) string {
	switch {
	case err == nil:
		return "location_success"
	case errors.Is(err, ErrUnsupported):
		return "location_unsupported"
	case errors.Is(err, ErrPermissionDenied):
		return "location_denied"
	case errors.Is(err, ErrTimeout):
		return "location_timeout"
	case errors.Is(err, ErrPositionUnavailable):
		return "location_unavailable"
	default:
		return "location_error"
	}
}

// Reading is a position or failure reported by a client device
type Reading struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	ErrorCode *int     `json:"errorCode,omitempty"`
}

// Reported converts a client reading into a Result
func Reported(r Reading) Result {
	if r.ErrorCode != nil {
		return Result{Err: FromCode(*r.ErrorCode)}
	}
	if r.Latitude == nil || r.Longitude == nil {
		return Result{Err: ErrPositionUnavailable}
	}
	if *r.Latitude < -90 || *r.Latitude > 90 || *r.Longitude < -180 || *r.Longitude > 180 {
		return Result{Err: ErrPositionUnavailable}
	}
	return Result{Coordinates: domain.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}}
}
