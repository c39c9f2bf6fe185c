package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppName    = "DevOps API"
	defaultAppVersion = "0.0.1"
	defaultHost       = "0.0.0.0"
	defaultPort       = 8000
)

// Token bucket defaults, shared with routers built without a Config.
const (
	DefaultRateLimitRPS   = 25.0
	DefaultRateLimitBurst = 50
)

// Environment variable names recognised by Resolve.
const (
	EnvAppName              = "APP_NAME"
	EnvAppVersion           = "APP_VERSION"
	EnvDebug                = "DEBUG"
	EnvHost                 = "HOST"
	EnvPort                 = "PORT"
	EnvReload               = "RELOAD"
	EnvLogLevel             = "LOG_LEVEL"
	EnvComponentFile        = "COMPONENT_FILE"
	EnvShutdownGracePeriod  = "SHUTDOWN_GRACE_PERIOD"
	EnvReadHeaderTimeout    = "READ_HEADER_TIMEOUT"
	EnvWriteTimeout         = "WRITE_TIMEOUT"
	EnvIdleTimeout          = "IDLE_TIMEOUT"
	EnvEnableRequestLogging = "REQUEST_LOGGING"
	EnvRateLimitRPS         = "RATE_LIMIT_RPS"
	EnvRateLimitBurst       = "RATE_LIMIT_BURST"
)

// Config is the immutable runtime configuration, built once at startup and
// passed by value to whoever needs it.
type Config struct {
	AppName    string
	AppVersion string
	Debug      bool
	Host       string
	Port       int
	Reload     bool
	LogLevel   LogLevel

	// ComponentFile is the descriptor served on /component. Empty disables it.
	ComponentFile string

	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// Addr returns the host:port pair the HTTP server binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// yamlConfig represents the YAML configuration file structure.
// Pointer fields distinguish an absent key from a zero value.
type yamlConfig struct {
	AppName              *string       `yaml:"app_name"`
	AppVersion           *string       `yaml:"app_version"`
	Debug                *bool         `yaml:"debug"`
	Host                 *string       `yaml:"host"`
	Port                 *int          `yaml:"port"`
	Reload               *bool         `yaml:"reload"`
	LogLevel             *string       `yaml:"log_level"`
	ComponentFile        *string       `yaml:"component_file"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Host           *string
	Port           *int
	LogLevel       *string
	ComponentFile  *string
	Reload         *bool
	RateLimitRPS   *float64
	RateLimitBurst *int
}

type lookupFunc func(key string) (string, bool)

// Resolve builds a Config from the process environment alone. Missing
// variables take their defaults; only a malformed PORT is an error.
func Resolve() (Config, error) {
	return resolveOnto(defaultConfig(), os.LookupEnv)
}

// resolveOnto layers the environment read through lookup over base.
func resolveOnto(base Config, lookup lookupFunc) (Config, error) {
	if err := applyEnvConfig(&base, lookup); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
//
// The environment layer is the one Resolve applies, so with no YAML file
// and no overrides Load returns exactly what Resolve does.
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	cfg, err := resolveOnto(cfg, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		AppName:              defaultAppName,
		AppVersion:           defaultAppVersion,
		Debug:                false,
		Host:                 defaultHost,
		Port:                 defaultPort,
		Reload:               false,
		LogLevel:             LogLevelInfo,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         DefaultRateLimitRPS,
		RateLimitBurst:       DefaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.AppName != nil {
		cfg.AppName = *yamlCfg.AppName
	}
	if yamlCfg.AppVersion != nil {
		cfg.AppVersion = *yamlCfg.AppVersion
	}
	if yamlCfg.Debug != nil {
		cfg.Debug = *yamlCfg.Debug
	}
	if yamlCfg.Host != nil {
		cfg.Host = *yamlCfg.Host
	}
	if yamlCfg.Port != nil {
		cfg.Port = *yamlCfg.Port
	}
	if yamlCfg.Reload != nil {
		cfg.Reload = *yamlCfg.Reload
	}
	if yamlCfg.LogLevel != nil {
		cfg.LogLevel = ParseLogLevel(*yamlCfg.LogLevel)
	}
	if yamlCfg.ComponentFile != nil {
		cfg.ComponentFile = *yamlCfg.ComponentFile
	}

	applyDuration(&cfg.ShutdownGracePeriod, yamlCfg.ShutdownGracePeriod)
	applyDuration(&cfg.ReadHeaderTimeout, yamlCfg.ReadHeaderTimeout)
	applyDuration(&cfg.WriteTimeout, yamlCfg.WriteTimeout)
	applyDuration(&cfg.IdleTimeout, yamlCfg.IdleTimeout)

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if rps := yamlCfg.RateLimit.RPS; rps != nil && *rps >= 0 {
		cfg.RateLimitRPS = *rps
	}
	if burst := yamlCfg.RateLimit.Burst; burst != nil && *burst >= 0 {
		cfg.RateLimitBurst = *burst
	}
}

// applyEnvConfig applies environment variable configuration. A variable set
// to the empty string is treated as present.
func applyEnvConfig(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(EnvAppName); ok {
		cfg.AppName = v
	}
	if v, ok := lookup(EnvAppVersion); ok {
		cfg.AppVersion = v
	}
	if v, ok := lookup(EnvDebug); ok {
		cfg.Debug = ParseBool(v)
	}
	if v, ok := lookup(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := parsePort(EnvPort, v)
		if err != nil {
			return err
		}
		cfg.Port = port
	}
	if v, ok := lookup(EnvReload); ok {
		cfg.Reload = ParseBool(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = ParseLogLevel(v)
	}
	if v, ok := lookup(EnvComponentFile); ok {
		cfg.ComponentFile = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvShutdownGracePeriod); ok {
		applyDuration(&cfg.ShutdownGracePeriod, v)
	}
	if v, ok := lookup(EnvReadHeaderTimeout); ok {
		applyDuration(&cfg.ReadHeaderTimeout, v)
	}
	if v, ok := lookup(EnvWriteTimeout); ok {
		applyDuration(&cfg.WriteTimeout, v)
	}
	if v, ok := lookup(EnvIdleTimeout); ok {
		applyDuration(&cfg.IdleTimeout, v)
	}
	if v, ok := lookup(EnvEnableRequestLogging); ok {
		cfg.EnableRequestLogging = ParseBool(v)
	}

	if v, ok := lookup(EnvRateLimitRPS); ok {
		if value, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}
	if v, ok := lookup(EnvRateLimitBurst); ok {
		if value, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Host != nil && *overrides.Host != "" {
		cfg.Host = *overrides.Host
	}
	if overrides.Port != nil {
		cfg.Port = *overrides.Port
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = ParseLogLevel(*overrides.LogLevel)
	}
	if overrides.ComponentFile != nil && *overrides.ComponentFile != "" {
		cfg.ComponentFile = *overrides.ComponentFile
	}
	if overrides.Reload != nil {
		cfg.Reload = *overrides.Reload
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if err := validatePort("port", cfg.Port); err != nil {
		return err
	}
	if cfg.RateLimitRPS < 0 {
		return &ConfigurationError{
			Variable: EnvRateLimitRPS,
			Value:    strconv.FormatFloat(cfg.RateLimitRPS, 'f', -1, 64),
			Err:      fmt.Errorf("must be >= 0"),
		}
	}
	if cfg.RateLimitBurst < 0 {
		return &ConfigurationError{
			Variable: EnvRateLimitBurst,
			Value:    strconv.Itoa(cfg.RateLimitBurst),
			Err:      fmt.Errorf("must be >= 0"),
		}
	}
	return nil
}

// applyDuration overwrites dst when raw is a valid Go duration.
func applyDuration(dst *time.Duration, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
