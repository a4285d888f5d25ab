package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Accepted values for Settings.DispatchPolicy.
const (
	PolicyAbort    = "abort"
	PolicyContinue = "continue"
)

// Accepted values for Settings.IDScheme.
const (
	IDSchemeCounter = "counter"
	IDSchemeUUID    = "uuid"
)

// ErrInvalidSettings is wrapped by every error returned from Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings configures a bus.
type Settings struct {
	// DispatchPolicy decides what a failing handler does to the rest of an
	// emit: "abort" stops dispatch, "continue" runs the remaining handlers.
	// Default: "abort"
	DispatchPolicy string `yaml:"dispatch_policy" json:"dispatch_policy" env:"NEWSFLASH_DISPATCH_POLICY"`

	// IDScheme selects the subscription id generator: "counter" or "uuid".
	// Default: "counter"
	IDScheme string `yaml:"id_scheme" json:"id_scheme" env:"NEWSFLASH_ID_SCHEME"`

	// RecoverPanics turns handler panics into errors.
	// Default: false
	RecoverPanics bool `yaml:"recover_panics" json:"recover_panics" env:"NEWSFLASH_RECOVER_PANICS"`

	// Metrics enables OpenTelemetry metrics.
	// Default: false
	Metrics bool `yaml:"metrics" json:"metrics" env:"NEWSFLASH_METRICS"`

	// Tracing enables OpenTelemetry spans.
	// Default: false
	Tracing bool `yaml:"tracing" json:"tracing" env:"NEWSFLASH_TRACING"`

	// LogLevel enables logging at the given slog level ("debug", "info",
	// "warn", "error"). Empty disables logging.
	LogLevel string `yaml:"log_level" json:"log_level" env:"NEWSFLASH_LOG_LEVEL"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		DispatchPolicy: PolicyAbort,
		IDScheme:       IDSchemeCounter,
	}
}

// Validate reports the first unsupported value.
func (s Settings) Validate() error {
	switch strings.ToLower(s.DispatchPolicy) {
	case PolicyAbort, PolicyContinue:
	default:
		return fmt.Errorf("%w: dispatch_policy %q", ErrInvalidSettings, s.DispatchPolicy)
	}

	switch strings.ToLower(s.IDScheme) {
	case IDSchemeCounter, IDSchemeUUID:
	default:
		return fmt.Errorf("%w: id_scheme %q", ErrInvalidSettings, s.IDScheme)
	}

	if s.LogLevel != "" {
		if _, err := s.SlogLevel(); err != nil {
			return err
		}
	}
	return nil
}

// LoggingEnabled returns true if a log level is configured.
func (s Settings) LoggingEnabled() bool {
	return s.LogLevel != ""
}

// SlogLevel parses LogLevel.
func (s Settings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidSettings, s.LogLevel)
	}
	return level, nil
}
