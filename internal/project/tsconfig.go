package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

var (
	// ErrConfigNotFound indicates the compiler configuration file is missing.
	ErrConfigNotFound = errors.New("compiler configuration not found")

	// ErrInvalidConfig indicates the compiler configuration could not be used.
	ErrInvalidConfig = errors.New("invalid compiler configuration")
)

// defaultExclude mirrors the compiler's exclusions when "exclude" is unset.
var defaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// tsconfigFile is the subset of tsconfig.json this package understands.
type tsconfigFile struct {
	Extends         json.RawMessage `json:"extends"`
	Files           *[]string       `json:"files"`
	Include         *[]string       `json:"include"`
	Exclude         *[]string       `json:"exclude"`
	CompilerOptions struct {
		AllowJs *bool   `json:"allowJs"`
		OutDir  *string `json:"outDir"`
	} `json:"compilerOptions"`
}

// Config is a resolved compiler configuration. All paths and patterns are
// slash-separated and relative to the project root.
type Config struct {
	// Path is the configuration file, empty for the built-in defaults.
	Path string

	Files   []string
	Include []string
	Exclude []string
	AllowJs bool
	OutDir  string

	filesSet   bool
	includeSet bool
	excludeSet bool
	allowJsSet bool
}

// DefaultConfig is used when a project has no configuration file.
// JavaScript files are included since there is nothing to say otherwise.
func DefaultConfig() *Config {
	return &Config{
		Include: []string{"**/*"},
		Exclude: append([]string(nil), defaultExclude...),
		AllowJs: true,
	}
}

// LoadConfig reads configName (relative to root) and its extends chain.
func LoadConfig(root, configName string) (*Config, error) {
	configPath := filepath.Join(root, filepath.FromSlash(configName))
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configName)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", configName, err)
	}

	cfg, err := readConfig(root, configPath, map[string]bool{})
	if err != nil {
		return nil, err
	}
	cfg.Path = configPath
	cfg.applyDefaults(root, configPath)
	return cfg, nil
}

// readConfig loads one file, merging it over its bases.
func readConfig(root, configPath string, seen map[string]bool) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	if seen[abs] {
		return nil, fmt.Errorf("%w: circular extends at %s", ErrInvalidConfig, configPath)
	}
	seen[abs] = true

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, relOrBase(root, configPath), err)
	}
	var file tsconfigFile
	if err := json.Unmarshal(std, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, relOrBase(root, configPath), err)
	}

	cfg := &Config{}
	bases, err := extendsList(file.Extends)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, relOrBase(root, configPath), err)
	}
	for _, ext := range bases {
		basePath, err := resolveExtends(filepath.Dir(configPath), ext)
		if err != nil {
			return nil, err
		}
		base, err := readConfig(root, basePath, seen)
		if err != nil {
			return nil, err
		}
		cfg.merge(base)
	}

	prefix := dirPrefix(root, filepath.Dir(configPath))
	if file.Files != nil {
		cfg.Files = rebase(prefix, *file.Files)
		cfg.filesSet = true
	}
	if file.Include != nil {
		cfg.Include = rebase(prefix, *file.Include)
		cfg.includeSet = true
	}
	if file.Exclude != nil {
		cfg.Exclude = rebase(prefix, *file.Exclude)
		cfg.excludeSet = true
	}
	if file.CompilerOptions.AllowJs != nil {
		cfg.AllowJs, cfg.allowJsSet = *file.CompilerOptions.AllowJs, true
	}
	if file.CompilerOptions.OutDir != nil {
		cfg.OutDir = path.Join(prefix, filepath.ToSlash(*file.CompilerOptions.OutDir))
	}
	return cfg, nil
}

// merge applies base underneath c; fields already set on c win.
func (c *Config) merge(base *Config) {
	if base.filesSet {
		c.Files, c.filesSet = base.Files, true
	}
	if base.includeSet {
		c.Include, c.includeSet = base.Include, true
	}
	if base.excludeSet {
		c.Exclude, c.excludeSet = base.Exclude, true
	}
	if base.allowJsSet {
		c.AllowJs, c.allowJsSet = base.AllowJs, true
	}
	if base.OutDir != "" {
		c.OutDir = base.OutDir
	}
}

// applyDefaults fills include/exclude the way the compiler does.
func (c *Config) applyDefaults(root, configPath string) {
	prefix := dirPrefix(root, filepath.Dir(configPath))
	if !c.includeSet {
		if c.filesSet {
			c.Include = []string{}
		} else {
			c.Include = rebase(prefix, []string{"**/*"})
		}
	}
	if !c.excludeSet {
		c.Exclude = rebase(prefix, defaultExclude)
		if c.OutDir != "" {
			c.Exclude = append(c.Exclude, c.OutDir)
		}
	}
}

// extendsList accepts either a string or an array of strings.
func extendsList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("extends must be a string or array of strings")
	}
	return many, nil
}

// resolveExtends finds the file named by an extends entry. Relative entries
// resolve against the extending file; bare names are looked up in
// node_modules directories from dir upwards.
func resolveExtends(dir, ext string) (string, error) {
	if strings.HasPrefix(ext, "./") || strings.HasPrefix(ext, "../") || filepath.IsAbs(ext) {
		p := ext
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, filepath.FromSlash(ext))
		}
		for _, candidate := range []string{p, p + ".json"} {
			if isFile(candidate) {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: extends %q not found", ErrInvalidConfig, ext)
	}

	for d := dir; ; d = filepath.Dir(d) {
		pkg := filepath.Join(d, "node_modules", filepath.FromSlash(ext))
		for _, candidate := range []string{pkg, filepath.Join(pkg, "tsconfig.json"), pkg + ".json"} {
			if isFile(candidate) {
				return candidate, nil
			}
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	return "", fmt.Errorf("%w: extends %q not found", ErrInvalidConfig, ext)
}

// dirPrefix is dir relative to root in slash form, "" for the root itself.
func dirPrefix(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func rebase(prefix string, patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		if prefix != "" {
			p = path.Join(prefix, p)
		}
		out = append(out, p)
	}
	return out
}

func relOrBase(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(p)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
