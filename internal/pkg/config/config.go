package config

import (
	"errors"
	"fmt"
)

// EnvPrefix is the prefix for environment overrides, e.g. CAL_SCHEDULER__WORKERS=8
const EnvPrefix = "CAL_"

// NewConfig loads configuration from defaults, config files and environment
// variables. Files are searched for unless paths are given.
func NewConfig(paths ...string) (*Config, error) {
	m := New(
		WithProvider(NewDefaultProvider(Defaults())),
		WithProvider(NewFileProvider(paths...)),
		WithProvider(NewEnvProvider(EnvPrefix)),
	)

	if err := m.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// An explicit file that cannot be read is an error, not a skipped layer
	if skipped := m.Skipped(); len(paths) > 0 && len(skipped) > 0 {
		return nil, fmt.Errorf("failed to load config: %w", errors.Join(skipped...))
	}

	return m.GetConfig(), nil
}

// Defaults returns the default configuration values as a nested map
func Defaults() map[string]any {
	return map[string]any{
		"logger": map[string]any{
			"level":       "info",
			"format":      "json",
			"output_path": "stdout",
		},
		"scheduler": map[string]any{
			"workers":          0,
			"max_workers":      0,
			"idle_timeout":     "30s",
			"queue_size":       0,
			"shutdown_timeout": "10s",
		},
		"enlightenment": map[string]any{
			"disabled":         []string{},
			"allow_threads":    true,
			"pin_threads":      false,
			"enable_task_pool": true,
		},
		"server": map[string]any{
			"host":             "0.0.0.0",
			"port":             8090,
			"read_timeout":     10,
			"write_timeout":    10,
			"shutdown_timeout": 10,
		},
		"health": map[string]any{
			"async_mode":       false,
			"check_interval":   "30s",
			"default_timeout":  "5s",
			"max_queue_length": 0,
		},
	}
}
