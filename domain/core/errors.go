package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrMetricNotFound = fmt.Errorf("%w: metric", ErrNotFound)

	// Forecast errors
	ErrInsufficientData = errors.New("insufficient data for model fit")
	ErrFitDiverged      = errors.New("model fit diverged")
	ErrFitTimeout       = errors.New("model fit timed out")
)

// IsNotFoundError checks for any not-found variant
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFitError reports whether the error came out of the model fitting path.
// Callers treat these as a signal to fall back, never as a hard failure.
func IsFitError(err error) bool {
	return errors.Is(err, ErrFitDiverged) ||
		errors.Is(err, ErrFitTimeout) ||
		errors.Is(err, ErrInsufficientData)
}
