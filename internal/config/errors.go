package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a configuration value that cannot be used.
// It is fatal at startup: the process must not serve with a bad value.
type ConfigurationError struct {
	Variable string
	Value    string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %v", ErrInvalidConfiguration, e.Variable, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidConfiguration as a match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
