/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/iostreams/pkg/codec"
	"github.com/ssargent/iostreams/pkg/stream"
	"github.com/ssargent/iostreams/pkg/transform"
)

// Config represents the iostreams configuration
type Config struct {
	Stream    Stream    `yaml:"stream"`
	Transform Transform `yaml:"transform"`
	Storage   Storage   `yaml:"storage"`
	Logging   Logging   `yaml:"logging"`
}

// Stream contains stream and driver sizing
type Stream struct {
	BlockSize uint64 `yaml:"block_size"`
	ChunkSize int    `yaml:"chunk_size"`
}

// Transform contains codec settings
type Transform struct {
	BufferSize int    `yaml:"buffer_size"`
	Level      string `yaml:"level"`
}

// Storage contains block store settings
type Storage struct {
	DataDir string `yaml:"data_dir"`
	Sync    bool   `yaml:"sync"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var compressionLevels = map[string]codec.Level{
	"default": codec.LevelDefault,
	"fastest": codec.LevelFastest,
	"best":    codec.LevelBest,
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Stream: Stream{
			BlockSize: stream.DefaultBlockSize,
			ChunkSize: stream.DefaultChunkSize,
		},
		Transform: Transform{
			BufferSize: transform.DefaultBufferSize,
			Level:      "default",
		},
		Storage: Storage{
			DataDir: "./data",
			Sync:    true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Stream.BlockSize == 0 {
		return fmt.Errorf("stream.block_size must be positive")
	}
	if c.Stream.ChunkSize <= 0 {
		return fmt.Errorf("stream.chunk_size must be positive, got %d", c.Stream.ChunkSize)
	}
	if c.Transform.BufferSize <= 0 {
		return fmt.Errorf("transform.buffer_size must be positive, got %d", c.Transform.BufferSize)
	}
	if _, ok := compressionLevels[strings.ToLower(c.Transform.Level)]; !ok {
		return fmt.Errorf("unknown transform.level %q", c.Transform.Level)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// CodecOptions returns the codec options selected by the transform section
func (c *Config) CodecOptions() []codec.Option {
	return []codec.Option{
		codec.WithBufferSize(c.Transform.BufferSize),
		codec.WithLevel(compressionLevels[strings.ToLower(c.Transform.Level)]),
	}
}

// NewLogger builds a logger from the logging section
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	if c.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// LoadConfig loads configuration from the specified path. Settings missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./iostreams.yaml"
	}

	// For Linux/macOS, use ~/.config/iostreams/config.yaml
	configDir := filepath.Join(homeDir, ".config", "iostreams")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
