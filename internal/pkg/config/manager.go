package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// ConfigManager merges provider output into a validated Config
type ConfigManager interface {
	Load() error
	Get(key string) any
	Unmarshal(target any) error
	GetConfig() *Config
	// Sources lists the providers that contributed to the last Load
	Sources() []string
	// Skipped holds the errors of providers that were skipped
	Skipped() []error
}

type manager struct {
	mu        sync.RWMutex
	providers []Provider
	validator *validator.Validate

	data    map[string]any
	config  *Config
	sources []string
	skipped []error
}

// New creates a config manager. Providers are applied in order, later ones
// overriding earlier ones.
func New(opts ...Option) ConfigManager {
	m := &manager{validator: validator.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Option is a functional option for configuring the manager
type Option func(*manager)

// WithProvider appends a provider
func WithProvider(provider Provider) Option {
	return func(m *manager) {
		m.providers = append(m.providers, provider)
	}
}

// Load reads every provider, decodes the merged map and validates it. A
// provider that fails is skipped; decode and validation errors fail the load.
func (m *manager) Load() error {
	merged := make(map[string]any)
	var sources []string
	var skipped []error

	for _, provider := range m.providers {
		data, err := provider.Load()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}
		if len(data) > 0 {
			sources = append(sources, provider.Name())
		}
		merged = mergeMaps(merged, data)
	}

	var cfg Config
	if err := decode(merged, &cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := m.validator.Struct(&cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = merged
	m.config = &cfg
	m.sources = sources
	m.skipped = skipped
	return nil
}

// Get returns the raw value at a dot-separated key, or nil
func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current any = m.data
	for _, k := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = node[k]; !ok {
			return nil
		}
	}
	return current
}

// Unmarshal decodes the merged data into target
func (m *manager) Unmarshal(target any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decode(m.data, target)
}

// GetConfig returns the last loaded Config
func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.sources...)
}

func (m *manager) Skipped() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]error(nil), m.skipped...)
}

func decode(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(input)
}
