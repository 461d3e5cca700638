package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Provider supplies one layer of configuration as a nested map
type Provider interface {
	Load() (map[string]any, error)
	Name() string
}

// DefaultProvider supplies built-in values
type DefaultProvider struct {
	defaults map[string]any
}

// NewDefaultProvider creates a provider returning defaults
func NewDefaultProvider(defaults map[string]any) *DefaultProvider {
	return &DefaultProvider{defaults: defaults}
}

func (p *DefaultProvider) Name() string {
	return "default"
}

func (p *DefaultProvider) Load() (map[string]any, error) {
	if p.defaults == nil {
		return map[string]any{}, nil
	}
	return p.defaults, nil
}

// FileProvider reads YAML files with viper. With explicit paths it reads
// exactly those, failing on a missing file. Otherwise it searches upward from
// the working directory for config/config.yaml and then applies
// config/config.<env>.yaml next to it, where env comes from CAL_ENV, GO_ENV
// or ENV.
type FileProvider struct {
	paths []string
	env   string
}

// NewFileProvider creates a file provider. No paths means search.
func NewFileProvider(paths ...string) *FileProvider {
	return &FileProvider{paths: paths, env: getEnv()}
}

func (p *FileProvider) Name() string {
	return "file"
}

func (p *FileProvider) Load() (map[string]any, error) {
	result := make(map[string]any)

	if len(p.paths) > 0 {
		for _, path := range p.paths {
			data, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			result = mergeMaps(result, data)
		}
		return result, nil
	}

	dir := findConfigDir()
	if dir == "" {
		return result, nil
	}
	candidates := []string{filepath.Join(dir, "config.yaml")}
	if p.env != "" && p.env != "development" {
		candidates = append(candidates, filepath.Join(dir, fmt.Sprintf("config.%s.yaml", p.env)))
	}
	for _, path := range candidates {
		data, err := loadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = mergeMaps(result, data)
	}
	return result, nil
}

func loadFile(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v.AllSettings(), nil
}

// EnvProvider maps prefixed environment variables onto nested keys. A double
// underscore separates levels: CAL_SCHEDULER__WORKERS=8 sets
// scheduler.workers.
type EnvProvider struct {
	prefix  string
	environ func() []string
}

// NewEnvProvider creates an environment provider; an empty prefix means
// EnvPrefix
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = EnvPrefix
	}
	return &EnvProvider{prefix: prefix, environ: os.Environ}
}

func (p *EnvProvider) Name() string {
	return "env"
}

func (p *EnvProvider) Load() (map[string]any, error) {
	result := make(map[string]any)
	for _, kv := range p.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, p.prefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, p.prefix)), "__")
		setPath(result, path, value)
	}
	return result, nil
}

// setPath stores value under path, creating intermediate maps
func setPath(m map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// mergeMaps returns a deep merge of a and b, b winning on conflicts
func mergeMaps(a, b map[string]any) map[string]any {
	result := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		if dst, ok := result[k].(map[string]any); ok {
			if src, ok := v.(map[string]any); ok {
				result[k] = mergeMaps(dst, src)
				continue
			}
		}
		result[k] = v
	}
	return result
}

func getEnv() string {
	for _, name := range []string{"CAL_ENV", "GO_ENV", "ENV"} {
		if env := os.Getenv(name); env != "" {
			return env
		}
	}
	return "development"
}

// findConfigDir walks up from the working directory looking for
// config/config.yaml
func findConfigDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "config", "config.yaml")); err == nil {
			return filepath.Join(dir, "config")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
