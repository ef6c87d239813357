// Package config loads the engine's tunable options through viper: the
// fan-out order and cache size. PageSize is not here because the file
// format fixes it at a compile-time constant.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Engine holds the options an opened database needs beyond its file path.
type Engine struct {
	Order        int `mapstructure:"order"`
	CacheMaxSize int `mapstructure:"cache_maxsize"`
}

const (
	defaultOrder        = 128
	defaultCacheMaxSize = 32
)

// Default returns the engine defaults used when no config file is present.
func Default() Engine {
	return Engine{Order: defaultOrder, CacheMaxSize: defaultCacheMaxSize}
}

// Load reads engine options from path (if non-empty) layered over the
// compiled-in defaults, then validates them.
func Load(path string) (Engine, error) {
	v := viper.New()
	v.SetDefault("order", defaultOrder)
	v.SetDefault("cache_maxsize", defaultCacheMaxSize)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Engine{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Engine
	if err := v.Unmarshal(&cfg); err != nil {
		return Engine{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the options against the engine's documented constraints.
func (e Engine) Validate() error {
	if e.Order < 3 {
		return fmt.Errorf("config: order must be >= 3, got %d", e.Order)
	}
	if e.CacheMaxSize < 1 {
		return fmt.Errorf("config: cache_maxsize must be >= 1, got %d", e.CacheMaxSize)
	}
	return nil
}
