// Package config loads user settings from an optional YAML file in the XDG
// config directory, overlaying them on top of built-in defaults.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const configFileName = "cpbar.yaml"

const (
	defaultBufferSize        = 16 * 1024 * 1024 // sequential copy buffer
	defaultBlockSize         = 32 * 1024 * 1024 // parallel block size
	defaultParallelThreshold = 64 * 1024 * 1024 // file size above which -P kicks in
	defaultCountdownSeconds  = 3
)

// Config holds the configuration options for the application.
type Config struct {
	BufferSize        int64  `yaml:"bufferSize,omitempty"`
	BlockSize         int64  `yaml:"blockSize,omitempty"`
	ParallelThreshold int64  `yaml:"parallelThreshold,omitempty"`
	Workers           int    `yaml:"workers,omitempty"` // 0 means use the benchmarked value
	CountdownSeconds  int    `yaml:"countdownSeconds,omitempty"`
	StatePath         string `yaml:"statePath,omitempty"`
}

// GetConfig reads the configuration file and returns a Config struct.
// A missing configuration file is not an error; defaults are used.
func GetConfig() (*Config, error) {
	configFilePath := filepath.Join(xdg.ConfigHome, configFileName)
	defaults := DefaultConfig()

	var cfg Config

	b, err := os.ReadFile(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if len(b) > 0 {
		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return nil, err
		}
	}

	conf := Config{
		BufferSize:        zeroOr(cfg.BufferSize, defaults.BufferSize),
		BlockSize:         zeroOr(cfg.BlockSize, defaults.BlockSize),
		ParallelThreshold: zeroOr(cfg.ParallelThreshold, defaults.ParallelThreshold),
		Workers:           zeroOr(cfg.Workers, defaults.Workers),
		CountdownSeconds:  zeroOr(cfg.CountdownSeconds, defaults.CountdownSeconds),
		StatePath:         zeroOr(cfg.StatePath, defaults.StatePath),
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func DefaultConfig() Config {
	return Config{
		BufferSize:        defaultBufferSize,
		BlockSize:         defaultBlockSize,
		ParallelThreshold: defaultParallelThreshold,
		CountdownSeconds:  defaultCountdownSeconds,
		StatePath:         filepath.Join(xdg.StateHome, "cpbar", "state.db"),
	}
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

func (c *Config) validate() error {
	if c.BufferSize <= 0 || c.BlockSize <= 0 || c.ParallelThreshold <= 0 {
		return ErrInvalidConfig
	}

	if c.Workers < 0 || c.CountdownSeconds < 0 || c.StatePath == "" {
		return ErrInvalidConfig
	}

	return nil
}
