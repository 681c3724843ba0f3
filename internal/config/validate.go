package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/declcat/internal/catalog"
)

var (
	// ErrEmptyAddr indicates a missing server listen address
	ErrEmptyAddr = errors.New("empty server address")

	// ErrInvalidTimeout indicates a negative or zero timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyTSConfig indicates a missing compiler configuration file name
	ErrEmptyTSConfig = errors.New("empty tsconfig name")

	// ErrInvalidCacheSize indicates a negative parse cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrEmptyGitBinary indicates a missing git executable
	ErrEmptyGitBinary = errors.New("empty git binary")

	// ErrInvalidDepth indicates a negative clone depth
	ErrInvalidDepth = errors.New("invalid clone depth")

	// ErrInvalidLogLevel indicates an unknown logging level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unknown logging format
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	// Validate server configuration
	if err := validateServer(&cfg.Server); err != nil {
		errs = append(errs, err)
	}

	// Validate analysis configuration
	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}

	// Validate project configuration
	if err := validateProject(&cfg.Project); err != nil {
		errs = append(errs, err)
	}

	// Validate git configuration
	if err := validateGit(&cfg.Git); err != nil {
		errs = append(errs, err)
	}

	// Validate logging configuration
	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateServer(cfg *ServerConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Addr) == "" {
		errs = append(errs, fmt.Errorf("%w: addr is required", ErrEmptyAddr))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: read_timeout must be positive, got %s", ErrInvalidTimeout, cfg.ReadTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: request_timeout must be positive, got %s", ErrInvalidTimeout, cfg.RequestTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: shutdown_timeout must be positive, got %s", ErrInvalidTimeout, cfg.ShutdownTimeout))
	}

	return joinErrors(errs)
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	// Vendor marker may be empty - nothing is excluded then

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	if _, err := catalog.ParsePolicy(cfg.OnParseError); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateProject(cfg *ProjectConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.TSConfig) == "" {
		errs = append(errs, fmt.Errorf("%w: tsconfig is required", ErrEmptyTSConfig))
	}
	// Zero disables the cache
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	return joinErrors(errs)
}

func validateGit(cfg *GitConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Binary) == "" {
		errs = append(errs, fmt.Errorf("%w: binary is required", ErrEmptyGitBinary))
	}
	if cfg.Depth < 0 {
		errs = append(errs, fmt.Errorf("%w: depth cannot be negative, got %d", ErrInvalidDepth, cfg.Depth))
	}
	// Zero timeout means no limit
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: git timeout cannot be negative, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	return joinErrors(errs)
}

func validateLogging(cfg *LoggingConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'json', got '%s'", ErrInvalidLogFormat, cfg.Format))
	}

	return joinErrors(errs)
}

// validationErrors formats several errors as one list and keeps each one
// reachable through errors.Is.
type validationErrors []error

func (e validationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e validationErrors) Unwrap() []error {
	return e
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	// Flatten nested lists so each error appears once in the output
	var flat validationErrors
	for _, err := range errs {
		var nested validationErrors
		if errors.As(err, &nested) {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}
	return flat
}
