package codec

import (
	"github.com/ssargent/iostreams/pkg/transform"
)

// Level selects the speed/ratio trade-off of compression transforms.
type Level int

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBest
)

// Config holds the settings shared by every codec constructor.
type Config struct {
	BufferSize int   // Output buffer capacity in bytes
	Level      Level // Compression level, ignored by text codecs
}

// Option is a functional option for codec constructors.
type Option func(*Config)

// DefaultConfig returns the default codec configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize: transform.DefaultBufferSize,
		Level:      LevelDefault,
	}
}

// WithBufferSize sets the output buffer capacity.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.BufferSize = size
		}
	}
}

// WithLevel sets the compression level.
func WithLevel(level Level) Option {
	return func(c *Config) {
		c.Level = level
	}
}

const minBufferSize = transform.MinBufferSize

func applyOptions(opts ...Option) Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.BufferSize < minBufferSize {
		config.BufferSize = minBufferSize
	}
	return config
}
