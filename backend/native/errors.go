package native

import "errors"

// Package errors for the HAL backend.
var (
	// ErrNilDevice is returned when a Device is created without a HAL device.
	ErrNilDevice = errors.New("native: HAL device is nil")

	// ErrNilQueue is returned when submitting without a HAL queue.
	ErrNilQueue = errors.New("native: HAL queue is nil")

	// ErrNotHALProvider is returned when a device provider does not expose
	// HAL objects.
	ErrNotHALProvider = errors.New("native: provider does not expose HAL types")

	// ErrInvalidDimensions is returned when width or height is zero.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrForeignObject is returned when an object handed to the backend was
	// not created by it.
	ErrForeignObject = errors.New("native: object not created by this backend")

	// ErrSubmitTimeout is returned when a submitted frame does not complete
	// within the fence timeout.
	ErrSubmitTimeout = errors.New("native: frame submission timed out")
)
