package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LogLevel is one of the five recognised verbosity names.
type LogLevel string

const (
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
)

var validLogLevels = map[LogLevel]struct{}{
	LogLevelDebug:    {},
	LogLevelInfo:     {},
	LogLevelWarning:  {},
	LogLevelError:    {},
	LogLevelCritical: {},
}

var truthyValues = map[string]struct{}{
	"true": {},
	"1":    {},
	"t":    {},
	"yes":  {},
	"y":    {},
	"on":   {},
}

// ParseBool reports whether raw is one of the truthy spellings.
// Anything else, including the empty string, is false.
func ParseBool(raw string) bool {
	_, ok := truthyValues[strings.ToLower(raw)]
	return ok
}

// ParseLogLevel upper-cases raw and falls back to INFO when it is not a known level.
func ParseLogLevel(raw string) LogLevel {
	level := LogLevel(strings.ToUpper(raw))
	if _, ok := validLogLevels[level]; !ok {
		return LogLevelInfo
	}
	return level
}

// parsePort parses a base-10 port number in the range 1-65535.
func parsePort(variable, raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Variable: variable, Value: raw, Err: fmt.Errorf("not a base-10 integer")}
	}
	if err := validatePort(variable, port); err != nil {
		return 0, err
	}
	return port, nil
}

func validatePort(variable string, port int) error {
	if port < 1 || port > 65535 {
		return &ConfigurationError{
			Variable: variable,
			Value:    strconv.Itoa(port),
			Err:      fmt.Errorf("port must be between 1 and 65535"),
		}
	}
	return nil
}
