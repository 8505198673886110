package space

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the sentinel wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid space configuration")

	// ErrOutsideSpace is returned when a spatial object is not contained by
	// the space it is decomposed in.
	ErrOutsideSpace = errors.New("object outside space")
)

// ConfigError describes a rejected Space configuration.
//
// errors.Is(err, ErrInvalidConfig) reports true for every ConfigError.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid space configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
