package domain

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	// ErrValidation is returned when a value is outside its allowed range.
	// Nothing is mutated when it is returned.
	ErrValidation = errors.New("domain: validation failed")

	// ErrUnavailable is returned when an attribute has not been received yet.
	ErrUnavailable = errors.New("domain: attribute unavailable")

	// ErrDispatch marks an observer refresh that failed or panicked.
	ErrDispatch = errors.New("domain: observer refresh failed")

	// ErrCommand is returned when the device-client rejects a command.
	ErrCommand = errors.New("domain: device command failed")

	// ErrUnknownStatus is returned when a status is outside the device vocabulary.
	ErrUnknownStatus = errors.New("domain: unknown status")
)
