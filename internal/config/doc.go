// Package config resolves runtime configuration from environment variables,
// an optional YAML file and CLI flags, with precedence: CLI flags >
// Environment variables > YAML config > Defaults.
//
// Resolve reads the environment only. Boolean and log-level values degrade
// to their defaults on unrecognised input, while a malformed PORT aborts with
// a ConfigurationError.
package config
