package config

import "go.uber.org/fx"

// Module exports the config module for FX
var Module = fx.Module("config",
	fx.Provide(provideConfig),
)

// File is an explicit config file path. Supply it to skip the search.
type File string

type params struct {
	fx.In

	File File `optional:"true"`
}

func provideConfig(p params) (*Config, error) {
	if p.File == "" {
		return NewConfig()
	}
	return NewConfig(string(p.File))
}
