// Package config provides configuration management for mailframe using
// Viper, loading from .mailframe.yml, environment variables with the
// MAILFRAME_ prefix, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Compiler CompilerConfig `yaml:"compiler" mapstructure:"compiler"`
	Editor   EditorConfig   `yaml:"editor" mapstructure:"editor"`
	Preview  PreviewConfig  `yaml:"preview" mapstructure:"preview"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the preview dev server.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// CompilerConfig configures the external HTML compiler collaborator.
type CompilerConfig struct {
	// Endpoint is the compiler service URL; markup goes in, HTML comes out
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// TimeoutMS bounds one compile request
	TimeoutMS int `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	// DebounceMS is the quiet window before a changed document is compiled
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// EditorConfig configures the editing session.
type EditorConfig struct {
	// HistoryLimit bounds the undo stack
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit"`
	// SnapshotDebounceMS is the quiet window before an edit burst becomes
	// one undo step
	SnapshotDebounceMS int `yaml:"snapshot_debounce_ms" mapstructure:"snapshot_debounce_ms"`
}

// PreviewConfig configures preview rendering.
type PreviewConfig struct {
	// Variables are substituted into the compiled preview ({firstName}...)
	Variables map[string]string `yaml:"variables" mapstructure:"variables"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load builds the configuration from viper's merged sources.
func Load() (*Config, error) {
	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("compiler.timeout_ms", 10000)
	viper.SetDefault("compiler.debounce_ms", 300)
	viper.SetDefault("editor.history_limit", 50)
	viper.SetDefault("editor.snapshot_debounce_ms", 800)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// Validate rejects values that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Compiler.TimeoutMS <= 0 {
		return fmt.Errorf("compiler.timeout_ms must be positive")
	}
	if c.Compiler.DebounceMS < 0 {
		return fmt.Errorf("compiler.debounce_ms must not be negative")
	}
	if c.Editor.HistoryLimit <= 0 {
		return fmt.Errorf("editor.history_limit must be positive")
	}
	return nil
}

// CompileTimeout returns the compiler timeout as a duration.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.Compiler.TimeoutMS) * time.Millisecond
}

// CompileDebounce returns the compile debounce window as a duration.
func (c *Config) CompileDebounce() time.Duration {
	return time.Duration(c.Compiler.DebounceMS) * time.Millisecond
}

// SnapshotDebounce returns the history debounce window as a duration.
func (c *Config) SnapshotDebounce() time.Duration {
	return time.Duration(c.Editor.SnapshotDebounceMS) * time.Millisecond
}

// Addr returns the host:port the preview server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
