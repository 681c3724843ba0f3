package config

import "time"

// Config represents the complete declcat configuration.
// It can be loaded from .declcat/config.yml with environment variable overrides.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Project  ProjectConfig  `yaml:"project" mapstructure:"project"`
	Git      GitConfig      `yaml:"git" mapstructure:"git"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`                         // listen address, e.g. ":3000"
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // request header/body read limit
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`   // whole-request limit, clone included
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // grace period for in-flight requests

	// AllowLocal lets HTTP clients analyze directories on the server host.
	// It replaces git.allow_local for the serve command.
	AllowLocal bool `yaml:"allow_local" mapstructure:"allow_local"`
}

// AnalysisConfig controls the declaration catalog.
type AnalysisConfig struct {
	VendorMarker string `yaml:"vendor_marker" mapstructure:"vendor_marker"`   // path substring that excludes a file
	Workers      int    `yaml:"workers" mapstructure:"workers"`               // 0 means NumCPU
	OnParseError string `yaml:"on_parse_error" mapstructure:"on_parse_error"` // "abort" or "skip"
}

// ProjectConfig controls how a repository is loaded as a project.
type ProjectConfig struct {
	TSConfig        string `yaml:"tsconfig" mapstructure:"tsconfig"`                 // compiler config, relative to the root
	RequireTSConfig bool   `yaml:"require_tsconfig" mapstructure:"require_tsconfig"` // false falls back to defaults
	CacheSize       int    `yaml:"cache_size" mapstructure:"cache_size"`             // parse cache entries, 0 disables
}

// GitConfig controls repository acquisition.
type GitConfig struct {
	Binary  string        `yaml:"binary" mapstructure:"binary"`
	Depth   int           `yaml:"depth" mapstructure:"depth"` // 0 clones full history
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TempDir string        `yaml:"temp_dir" mapstructure:"temp_dir"` // empty uses the OS temp dir

	// AllowLocal accepts local directories and file:// URLs as locators.
	AllowLocal bool `yaml:"allow_local" mapstructure:"allow_local"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			RequestTimeout:  5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			AllowLocal:      false,
		},
		Analysis: AnalysisConfig{
			VendorMarker: "node_modules",
			Workers:      0,
			OnParseError: "abort",
		},
		Project: ProjectConfig{
			TSConfig:        "tsconfig.json",
			RequireTSConfig: true,
			CacheSize:       10000,
		},
		Git: GitConfig{
			Binary:     "git",
			Depth:      1,
			Timeout:    2 * time.Minute,
			TempDir:    "", // Empty means os.TempDir()
			AllowLocal: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
