package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader reading an explicit config file. Unlike the
// directory loader, a missing file is an error.
func NewFileLoader(configFile string) Loader {
	return &loader{
		rootDir:    filepath.Dir(configFile),
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DECLCAT_*), after loading rootDir/.env
// 2. Config file (.declcat/config.yml or .declcat/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	// Existing environment variables are never overwritten by .env
	_ = godotenv.Load(filepath.Join(l.rootDir, ".env"))

	// Configure viper
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".declcat"))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("DECLCAT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DECLCAT_SERVER_ADDR)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	for _, key := range []string{
		"server.addr",
		"server.read_timeout",
		"server.request_timeout",
		"server.shutdown_timeout",
		"server.allow_local",
		"analysis.vendor_marker",
		"analysis.workers",
		"analysis.on_parse_error",
		"project.tsconfig",
		"project.require_tsconfig",
		"project.cache_size",
		"git.binary",
		"git.depth",
		"git.timeout",
		"git.temp_dir",
		"git.allow_local",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}

	// Set defaults in viper
	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Config file not found is acceptable - we'll use defaults + env vars
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate the configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Server defaults
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.request_timeout", defaults.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("server.allow_local", defaults.Server.AllowLocal)

	// Analysis defaults
	v.SetDefault("analysis.vendor_marker", defaults.Analysis.VendorMarker)
	v.SetDefault("analysis.workers", defaults.Analysis.Workers)
	v.SetDefault("analysis.on_parse_error", defaults.Analysis.OnParseError)

	// Project defaults
	v.SetDefault("project.tsconfig", defaults.Project.TSConfig)
	v.SetDefault("project.require_tsconfig", defaults.Project.RequireTSConfig)
	v.SetDefault("project.cache_size", defaults.Project.CacheSize)

	// Git defaults
	v.SetDefault("git.binary", defaults.Git.Binary)
	v.SetDefault("git.depth", defaults.Git.Depth)
	v.SetDefault("git.timeout", defaults.Git.Timeout)
	v.SetDefault("git.temp_dir", defaults.Git.TempDir)
	v.SetDefault("git.allow_local", defaults.Git.AllowLocal)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
