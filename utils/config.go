package utils

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Renderer names accepted by Config.Renderer
const (
	RendererTerminal = "terminal"
	RendererWindow   = "window"
	RendererText     = "text"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for the game
type Config struct {
	Width               int           `json:"width" yaml:"width"`
	Height              int           `json:"height" yaml:"height"`
	FrameRate           time.Duration `json:"frame_rate" yaml:"frame_rate"`
	AutoRestart         bool          `json:"auto_restart" yaml:"auto_restart"`
	StagnationThreshold int           `json:"stagnation_threshold" yaml:"stagnation_threshold"`
	MaxGenerations      int           `json:"max_generations" yaml:"max_generations"`
	Seed                int64         `json:"seed" yaml:"seed"`
	Pattern             string        `json:"pattern" yaml:"pattern"`
	Renderer            string        `json:"renderer" yaml:"renderer"`
	Fullscreen          bool          `json:"fullscreen" yaml:"fullscreen"`
	WindowWidth         int           `json:"window_width" yaml:"window_width"`
	WindowHeight        int           `json:"window_height" yaml:"window_height"`
	MetricsAddr         string        `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel            string        `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:               20,
		Height:              20,
		FrameRate:           100 * time.Millisecond,
		AutoRestart:         true,
		StagnationThreshold: 5,
		MaxGenerations:      0, // run until quit
		Renderer:            RendererTerminal,
		WindowWidth:         800,
		WindowHeight:        800,
		LogLevel:            "info",
	}
}

// LoadConfig loads configuration from a YAML or JSON file on top of the
// defaults, then applies environment overrides. An empty filename skips the file.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
		}
		if err = unmarshalConfig(data, &config); err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
		}
	}

	applyEnv(&config)
	return config, nil
}

// unmarshalConfig tries YAML first, then JSON
func unmarshalConfig(data []byte, config *Config) error {
	yamlErr := yaml.Unmarshal(data, config)
	if yamlErr == nil {
		return nil
	}
	if err := json.Unmarshal(data, config); err != nil {
		return errors.Wrapf(err, "yaml: %v", yamlErr)
	}
	return nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("GOL_WIDTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Width = i
		}
	}
	if v := os.Getenv("GOL_HEIGHT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Height = i
		}
	}
	if v := os.Getenv("GOL_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = i
		}
	}
	if v := os.Getenv("GOL_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}

// Validate checks that the configuration can drive a game
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "grid must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if c.FrameRate < 0 {
		return errors.Wrapf(ErrInvalidConfig, "frame_rate must be >= 0, got %s", c.FrameRate)
	}
	if c.StagnationThreshold < 1 {
		return errors.Wrapf(ErrInvalidConfig, "stagnation_threshold must be >= 1, got %d", c.StagnationThreshold)
	}
	if c.MaxGenerations < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_generations must be >= 0, got %d", c.MaxGenerations)
	}
	switch strings.ToLower(c.Renderer) {
	case RendererTerminal, RendererText:
	case RendererWindow:
		if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "window must be at least 1x1, got %dx%d", c.WindowWidth, c.WindowHeight)
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown renderer %q", c.Renderer)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}
