package service

import (
	"errors"

	"caudal/internal/domain"
)

// Sentinel errors for recoverable validation failures. They map onto the
// result codes surfaced to the caller; anything else collapses to "unknown".
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidRUT    = errors.New("rut has invalid format")
	ErrRUTExists     = errors.New("rut already registered")
)

// Outcome translates a use-case result into the wire-level result code:
// the event on success, a classified error code on failure.
func Outcome(event domain.EventKind, err error) domain.Outcome {
	switch {
	case err == nil:
		return domain.OK(event)
	case errors.Is(err, ErrRUTExists):
		return domain.Failed(domain.ErrRutExists)
	case errors.Is(err, ErrInvalidRUT):
		return domain.Failed(domain.ErrRutInvalid)
	case errors.Is(err, ErrMissingFields):
		return domain.Failed(domain.ErrMissingFields)
	default:
		return domain.Failed(domain.ErrUnknown)
	}
}
