package newsflash

import (
	"log/slog"
	"os"
	"strings"

	"github.com/randalmurphal/newsflash/pkg/newsflash/config"
)

// SettingsOptions translates loaded settings into bus options.
// Logging, when enabled, writes text records to stderr.
func SettingsOptions(s config.Settings) ([]Option, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	policy, err := ParseDispatchPolicy(s.DispatchPolicy)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithDispatchPolicy(policy),
		WithRecover(s.RecoverPanics),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}

	if strings.EqualFold(s.IDScheme, config.IDSchemeUUID) {
		opts = append(opts, WithIDGenerator(UUIDGenerator{}))
	}

	if s.LoggingEnabled() {
		level, err := s.SlogLevel()
		if err != nil {
			return nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		opts = append(opts, WithLogger(logger))
	}
	return opts, nil
}

// NewFromSettings creates a bus from loaded settings. Options in extra are
// applied last and override the settings.
//
// Example:
//
//	s, err := config.FromFile("newsflash.yaml")
//	if err != nil {
//	    return err
//	}
//	if s, err = config.FromEnv(s); err != nil {
//	    return err
//	}
//	bus, err := newsflash.NewFromSettings(s)
func NewFromSettings(s config.Settings, extra ...Option) (*Bus, error) {
	opts, err := SettingsOptions(s)
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...), nil
}
