package project

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var (
	tsExtensions = []string{".ts", ".tsx", ".mts", ".cts"}
	jsExtensions = []string{".js", ".jsx", ".mjs", ".cjs"}
)

// packageDirs are never entered by wildcards unless a pattern names them.
var packageDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
	"jspm_packages":    true,
}

// compiledPattern holds both the pattern string and its compiled variants
type compiledPattern struct {
	pattern string
	globs   []glob.Glob
}

func compilePattern(pattern, globPattern string) (compiledPattern, error) {
	cp := compiledPattern{pattern: pattern}
	for _, variant := range globstarVariants(globPattern) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return cp, err
		}
		cp.globs = append(cp.globs, g)
	}
	return cp, nil
}

func (cp compiledPattern) match(relPath string) bool {
	for _, g := range cp.globs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// fileDiscovery walks a project root and applies a Config's file rules.
type fileDiscovery struct {
	rootDir    string
	realRoot   string // rootDir with symlinks resolved
	cfg        *Config
	include    []compiledPattern
	exclude    []compiledPattern
	extensions map[string]bool
	// namedPackageDirs are package directories an include pattern spells out.
	namedPackageDirs map[string]bool
}

func newFileDiscovery(rootDir string, cfg *Config) (*fileDiscovery, error) {
	realRoot, err := filepath.EvalSymlinks(rootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	fd := &fileDiscovery{
		rootDir:          rootDir,
		realRoot:         realRoot,
		cfg:              cfg,
		extensions:       make(map[string]bool),
		namedPackageDirs: make(map[string]bool),
	}

	for _, ext := range tsExtensions {
		fd.extensions[ext] = true
	}
	if cfg.AllowJs {
		for _, ext := range jsExtensions {
			fd.extensions[ext] = true
		}
	}

	for _, pattern := range cfg.Include {
		cp, err := compilePattern(pattern, includeGlob(pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: include pattern %q: %v", ErrInvalidConfig, pattern, err)
		}
		fd.include = append(fd.include, cp)
		for _, segment := range strings.Split(pattern, "/") {
			if packageDirs[segment] {
				fd.namedPackageDirs[segment] = true
			}
		}
	}

	for _, pattern := range cfg.Exclude {
		cp, err := compilePattern(pattern, strings.TrimSuffix(pattern, "/"))
		if err != nil {
			return nil, fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidConfig, pattern, err)
		}
		fd.exclude = append(fd.exclude, cp)
	}

	return fd, nil
}

// discover returns root-relative slash paths: explicit files first, then
// include matches in lexical walk order, without duplicates.
func (fd *fileDiscovery) discover() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, f := range fd.cfg.Files {
		f = path.Clean(f)
		if !withinRoot(f) {
			return nil, fmt.Errorf("%w: file %q listed in \"files\" is outside the project root", ErrInvalidConfig, f)
		}
		if !isFile(filepath.Join(fd.rootDir, filepath.FromSlash(f))) {
			return nil, fmt.Errorf("%w: file %q listed in \"files\" not found", ErrInvalidConfig, f)
		}
		if !fd.resolvesInside(f) {
			return nil, fmt.Errorf("%w: file %q listed in \"files\" links outside the project root", ErrInvalidConfig, f)
		}
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	if len(fd.include) == 0 {
		return files, nil
	}

	err := filepath.WalkDir(fd.rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, p)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if fd.skipDir(relPath, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if seen[relPath] || !fd.extensions[extension(relPath)] {
			return nil
		}
		if fd.matchesAny(relPath, fd.exclude) || !fd.matchesAny(relPath, fd.include) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && !fd.resolvesInside(relPath) {
			return nil
		}

		seen[relPath] = true
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", fd.rootDir, err)
	}

	return files, nil
}

// withinRoot reports whether a cleaned slash path stays under the root.
func withinRoot(relPath string) bool {
	return relPath != ".." && !strings.HasPrefix(relPath, "../") && !path.IsAbs(relPath)
}

// resolvesInside reports whether relPath, after following symlinks, is a
// regular file under the root.
func (fd *fileDiscovery) resolvesInside(relPath string) bool {
	resolved, err := filepath.EvalSymlinks(filepath.Join(fd.rootDir, filepath.FromSlash(relPath)))
	if err != nil || !isFile(resolved) {
		return false
	}
	rel, err := filepath.Rel(fd.realRoot, resolved)
	return err == nil && withinRoot(filepath.ToSlash(rel))
}

// skipDir prunes hidden directories, excluded directories and package
// directories that no include pattern names.
func (fd *fileDiscovery) skipDir(relPath, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if packageDirs[name] && !fd.namedPackageDirs[name] {
		return true
	}
	return fd.matchesAny(relPath, fd.exclude)
}

func (fd *fileDiscovery) matchesAny(relPath string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(relPath) {
			return true
		}
	}
	return false
}

// includeGlob appends "/**/*" when the last segment has no wildcard and no
// extension, since such a pattern names a directory.
func includeGlob(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "/")
	last := path.Base(pattern)
	if !strings.ContainsAny(last, "*?") && path.Ext(last) == "" {
		pattern += "/**/*"
	}
	return pattern
}

// globstarVariants returns the pattern plus every variant with some "**/"
// segments removed. gobwas requires the slash after "**", so without the
// variants "src/**/*.ts" would not match "src/a.ts".
func globstarVariants(pattern string) []string {
	for i := 0; i+3 <= len(pattern); i++ {
		if pattern[i:i+3] != "**/" || (i > 0 && pattern[i-1] != '/') {
			continue
		}
		head, tail := pattern[:i], pattern[i+3:]
		var out []string
		for _, rest := range globstarVariants(tail) {
			out = append(out, head+"**/"+rest, head+rest)
		}
		return out
	}
	return []string{pattern}
}

// extension returns the lowercased final extension; "x.d.ts" yields ".ts".
func extension(p string) string {
	return strings.ToLower(path.Ext(p))
}
