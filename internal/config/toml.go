// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Bench BenchConfig `toml:"bench"`
	Store StoreConfig `toml:"store"`
	Log   LogConfig   `toml:"log"`
}

// BenchConfig maps benchmark settings. Nil fields were not set in the file.
type BenchConfig struct {
	Version    *int     `toml:"version"`
	TimeTarget *int     `toml:"time-target"`
	Length     *int     `toml:"length"`
	MinLength  *int     `toml:"min-length"`
	Axis       *int     `toml:"axis"`
	Limit      *float64 `toml:"limit"`
	Mode       *string  `toml:"mode"`
	Dataset    *string  `toml:"dataset"`
	Rows       *int     `toml:"rows"`
	Cols       *int     `toml:"cols"`
	Seed       *int64   `toml:"seed"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Backend *string `toml:"backend"`
	Dir     *string `toml:"dir"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
