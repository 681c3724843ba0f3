package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declcat/internal/parsers"
	"github.com/mvp-joe/declcat/internal/source"
)

// Test Plan for Project Loading:
// - LoadConfig() reports ErrConfigNotFound for a missing file
// - LoadConfig() accepts comments and trailing commas
// - LoadConfig() rejects malformed JSON with ErrInvalidConfig
// - LoadConfig() merges an extends chain, child fields winning
// - LoadConfig() detects extends cycles
// - LoadConfig() adds outDir to the default excludes
// - discover() honors files, include and exclude
// - discover() skips node_modules unless an include pattern names it
// - discover() only picks JavaScript with allowJs
// - discover() keeps files and symlinks inside the root
// - "**/" matches zero directories
// - Load() parses discovered files in order
// - Load() falls back to DefaultConfig when the config is optional
// - Load() records syntax errors without failing

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func discoverAll(t *testing.T, root string) []string {
	t.Helper()
	cfg, err := LoadConfig(root, DefaultConfigName)
	require.NoError(t, err)
	fd, err := newFileDiscovery(root, cfg)
	require.NoError(t, err)
	files, err := fd.discover()
	require.NoError(t, err)
	return files
}

func TestLoadConfig_NotFound(t *testing.T) {
	root := t.TempDir()

	_, err := LoadConfig(root, DefaultConfigName)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfig_CommentsAndTrailingCommas(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{
			// editor-generated
			"compilerOptions": { "allowJs": true, },
			/* only sources */
			"include": ["src"],
		}`,
	})

	cfg, err := LoadConfig(root, DefaultConfigName)
	require.NoError(t, err)
	assert.True(t, cfg.AllowJs)
	assert.Equal(t, []string{"src"}, cfg.Include)
	assert.Equal(t, defaultExclude, cfg.Exclude)
}

func TestLoadConfig_Malformed(t *testing.T) {
	root := writeTree(t, map[string]string{"tsconfig.json": `{"include": [`})

	_, err := LoadConfig(root, DefaultConfigName)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_Extends(t *testing.T) {
	root := writeTree(t, map[string]string{
		"configs/base.json": `{"compilerOptions": {"allowJs": true}, "include": ["lib"], "exclude": ["lib/gen"]}`,
		"tsconfig.json":     `{"extends": "./configs/base.json", "compilerOptions": {"allowJs": false}}`,
	})

	cfg, err := LoadConfig(root, DefaultConfigName)
	require.NoError(t, err)
	assert.False(t, cfg.AllowJs)
	// Inherited patterns are relative to the base file's directory.
	assert.Equal(t, []string{"configs/lib"}, cfg.Include)
	assert.Equal(t, []string{"configs/lib/gen"}, cfg.Exclude)
}

func TestLoadConfig_ExtendsCycle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.json":        `{"extends": "./tsconfig.json"}`,
		"tsconfig.json": `{"extends": "./a.json"}`,
	})

	_, err := LoadConfig(root, DefaultConfigName)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_OutDirExcluded(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"outDir": "dist"}}`,
	})

	cfg, err := LoadConfig(root, DefaultConfigName)
	require.NoError(t, err)
	assert.Contains(t, cfg.Exclude, "dist")
}

func TestDiscover_FilesIncludeExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json":         `{"files": ["scripts/setup.ts"], "include": ["src/**/*"], "exclude": ["src/**/*.spec.ts"]}`,
		"scripts/setup.ts":      "export const setup = () => {};",
		"scripts/other.ts":      "export const other = 1;",
		"src/index.ts":          "export function main() {}",
		"src/index.spec.ts":     "export function test() {}",
		"src/util/strings.ts":   "export type S = string;",
		"src/util/strings.json": "{}",
	})

	files := discoverAll(t, root)
	assert.Equal(t, []string{"scripts/setup.ts", "src/index.ts", "src/util/strings.ts"}, files)
}

func TestDiscover_MissingExplicitFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{"files": ["missing.ts"]}`,
	})
	cfg, err := LoadConfig(root, DefaultConfigName)
	require.NoError(t, err)
	fd, err := newFileDiscovery(root, cfg)
	require.NoError(t, err)

	_, err = fd.discover()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDiscover_FilesOutsideRoot(t *testing.T) {
	outer := writeTree(t, map[string]string{
		"secret.ts":                    "export const token = 'x';",
		"app/configs/base.json":        `{"files": ["../../secret.ts"]}`,
		"app/src/index.ts":             "export const a = 1;",
		"app/escape/tsconfig.json":     `{"files": ["../../secret.ts"]}`,
		"app/extends/tsconfig.json":    `{"extends": "../configs/base.json"}`,
		"app/absolute/tsconfig.json":   `{"files": ["/etc/hosts.ts"]}`,
		"app/normalized/tsconfig.json": `{"files": ["./lib/../a.ts"]}`,
		"app/normalized/a.ts":          "export const a = 1;",
	})

	for _, dir := range []string{"escape", "extends", "absolute"} {
		t.Run(dir, func(t *testing.T) {
			root := filepath.Join(outer, "app", dir)
			cfg, err := LoadConfig(root, DefaultConfigName)
			require.NoError(t, err)
			fd, err := newFileDiscovery(root, cfg)
			require.NoError(t, err)

			_, err = fd.discover()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, "outside the project root")
		})
	}

	t.Run("normalized path inside root", func(t *testing.T) {
		assert.Equal(t, []string{"a.ts"}, discoverAll(t, filepath.Join(outer, "app", "normalized")))
	})
}

func TestDiscover_SymlinksOutsideRoot(t *testing.T) {
	outer := writeTree(t, map[string]string{
		"secret.ts":            "export const token = 'x';",
		"app/tsconfig.json":    `{}`,
		"app/src/index.ts":     "export const a = 1;",
		"app/src/shared.ts":    "export const s = 1;",
		"linked/tsconfig.json": `{"files": ["leak.ts"]}`,
	})
	root := filepath.Join(outer, "app")
	if err := os.Symlink(filepath.Join(outer, "secret.ts"), filepath.Join(root, "src", "leak.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "src", "shared.ts"), filepath.Join(root, "src", "alias.ts")))

	assert.Equal(t, []string{"src/alias.ts", "src/index.ts", "src/shared.ts"}, discoverAll(t, root))

	linked := filepath.Join(outer, "linked")
	require.NoError(t, os.Symlink(filepath.Join(outer, "secret.ts"), filepath.Join(linked, "leak.ts")))
	cfg, err := LoadConfig(linked, DefaultConfigName)
	require.NoError(t, err)
	fd, err := newFileDiscovery(linked, cfg)
	require.NoError(t, err)
	_, err = fd.discover()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDiscover_PackageDirectories(t *testing.T) {
	files := map[string]string{
		"src/a.ts":                  "export const a = 1;",
		"node_modules/lib/index.ts": "export const lib = 1;",
		".cache/gen.ts":             "export const gen = 1;",
	}

	t.Run("skipped by default", func(t *testing.T) {
		files["tsconfig.json"] = `{}`
		root := writeTree(t, files)
		assert.Equal(t, []string{"src/a.ts"}, discoverAll(t, root))
	})

	t.Run("included when named", func(t *testing.T) {
		files["tsconfig.json"] = `{"include": ["src", "node_modules/lib"], "exclude": []}`
		root := writeTree(t, files)
		assert.Equal(t, []string{"node_modules/lib/index.ts", "src/a.ts"}, discoverAll(t, root))
	})
}

func TestDiscover_AllowJs(t *testing.T) {
	files := map[string]string{
		"app.ts":     "export const a = 1;",
		"legacy.js":  "function old() {}",
		"widget.jsx": "const W = () => <div />;",
	}

	files["tsconfig.json"] = `{}`
	assert.Equal(t, []string{"app.ts"}, discoverAll(t, writeTree(t, files)))

	files["tsconfig.json"] = `{"compilerOptions": {"allowJs": true}}`
	assert.Equal(t, []string{"app.ts", "legacy.js", "widget.jsx"}, discoverAll(t, writeTree(t, files)))
}

func TestGlobstarVariants(t *testing.T) {
	assert.Equal(t, []string{"src/*.ts"}, globstarVariants("src/*.ts"))
	assert.Equal(t, []string{"src/**/*.ts", "src/*.ts"}, globstarVariants("src/**/*.ts"))
	assert.Equal(t, []string{"**/a/**/b", "a/**/b", "**/a/b", "a/b"}, globstarVariants("**/a/**/b"))

	cp, err := compilePattern("src/**/*.ts", "src/**/*.ts")
	require.NoError(t, err)
	assert.True(t, cp.match("src/a.ts"))
	assert.True(t, cp.match("src/x/y/a.ts"))
	assert.False(t, cp.match("lib/a.ts"))
}

func TestIncludeGlob(t *testing.T) {
	assert.Equal(t, "src/**/*", includeGlob("src"))
	assert.Equal(t, "src/**/*", includeGlob("src/"))
	assert.Equal(t, "src/*.ts", includeGlob("src/*.ts"))
	assert.Equal(t, "index.ts", includeGlob("index.ts"))
}

func TestLoader_Load(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{"include": ["src"]}`,
		"src/b.ts":      "export interface B { x: number }",
		"src/a.ts":      "export function a() {}\nexport enum E { X }",
	})

	loader := NewLoader(parsers.NewParser(), WithWorkers(2))
	p, err := loader.Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, "tsconfig.json"), p.ConfigPath)
	require.Len(t, p.Files, 2)
	assert.Equal(t, "src/a.ts", p.Files[0].Path)
	assert.Equal(t, "src/b.ts", p.Files[1].Path)
	assert.Len(t, p.Files[0].Functions(), 1)
	assert.Len(t, p.Files[0].Enums(), 1)
	assert.Len(t, p.Files[1].Interfaces(), 1)
}

func TestLoader_ConfigRequired(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": "export const a = 1;"})

	_, err := NewLoader(parsers.NewParser()).Load(context.Background(), root)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoader_ConfigOptional(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.ts":      "export const a = 1;",
		"b.js":      "function b() {}",
		"README.md": "# readme",
	})

	p, err := NewLoader(parsers.NewParser(), WithRequireConfig(false)).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, p.ConfigPath)
	require.Len(t, p.Files, 2)
	assert.Equal(t, "a.ts", p.Files[0].Path)
	assert.Equal(t, source.JavaScript, p.Files[1].Language)
}

func TestLoader_SyntaxErrorRecorded(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{}`,
		"bad.ts":        "export function (",
		"good.ts":       "export class Good {}",
	})

	p, err := NewLoader(parsers.NewParser()).Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, p.Files, 2)
	assert.ErrorIs(t, p.Files[0].Err, source.ErrMalformed)
	assert.NoError(t, p.Files[1].Err)
}

func TestLoader_NotADirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": ""})

	_, err := NewLoader(parsers.NewParser()).Load(context.Background(), filepath.Join(root, "a.ts"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
