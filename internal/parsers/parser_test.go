package parsers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declcat/internal/source"
)

// Test Plan for the declaration parser:
// - Grammar detection by extension (.ts/.tsx/.js families, unknown)
// - Top-level functions, generators, ambient and default-exported functions
// - Overload signatures and nested declarations are not reported
// - Exported declarations keep the export keyword in their text
// - Variable declarators with and without initializers, destructuring names
// - Initializer kinds for arrow functions, JSX elements and everything else
// - Syntax errors produce a ParseError with a location instead of declarations
// - Empty files yield an empty, error-free SourceFile
// - Cached parses return equal results and count hits

func readFixture(t *testing.T, rel string) []byte {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("../../testdata/code", rel))
	require.NoError(t, err)
	return src
}

func names[T source.Decl](decls []T) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.DeclName())
	}
	return out
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want source.Language
		ok   bool
	}{
		{"src/index.ts", source.TypeScript, true},
		{"src/types.d.ts", source.TypeScript, true},
		{"src/esm.mts", source.TypeScript, true},
		{"src/App.tsx", source.TSX, true},
		{"lib/util.js", source.JavaScript, true},
		{"lib/View.JSX", source.JavaScript, true},
		{"lib/config.cjs", source.JavaScript, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DetectLanguage(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".cjs", ".cts", ".js", ".jsx", ".mjs", ".mts", ".ts", ".tsx"}, Extensions())
}

func TestParseFile_TypeScriptDeclarations(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "shapes.ts", readFixture(t, "typescript/shapes.ts"))
	require.NoError(t, err)
	require.NoError(t, f.Err)

	assert.Equal(t, "shapes.ts", f.Path)
	assert.Equal(t, source.TypeScript, f.Language)

	assert.Equal(t, []string{"area", "ids", "external", "overloaded", "outer"}, names(f.Functions()))
	assert.Equal(t, []string{"Base", "Circle"}, names(f.Classes()))
	assert.Equal(t, []string{"Shape"}, names(f.Interfaces()))
	assert.Equal(t, []string{"Color"}, names(f.Enums()))
	assert.Equal(t, []string{"ShapeId"}, names(f.TypeAliases()))
	assert.Equal(t,
		[]string{"double", "fetchAll", "counter", "legacy", "square", "{ a, b }", "VERSION"},
		names(f.Variables()))
}

func TestParseFile_DeclarationText(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "shapes.ts", readFixture(t, "typescript/shapes.ts"))
	require.NoError(t, err)
	require.NoError(t, f.Err)

	fns := f.Functions()
	require.Len(t, fns, 5)
	assert.Equal(t, "export function area(s: Shape): number {\n  return s.area();\n}", fns[0].Text())
	assert.Equal(t, "declare function external(x: number): void;", fns[2].Text())
	assert.Contains(t, fns[3].Text(), "export function overloaded(x: any) {")
	assert.NotContains(t, fns[3].Text(), "x: string")

	aliases := f.TypeAliases()
	require.Len(t, aliases, 1)
	assert.Equal(t, "export type ShapeId = string;", aliases[0].Text())

	classes := f.Classes()
	require.Len(t, classes, 2)
	assert.Contains(t, classes[0].Text(), "export abstract class Base implements Shape {")
}

func TestParseFile_VariableInitializers(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "shapes.ts", readFixture(t, "typescript/shapes.ts"))
	require.NoError(t, err)

	vars := f.Variables()
	require.Len(t, vars, 7)

	byName := map[string]*source.VariableDecl{}
	for _, v := range vars {
		byName[v.Name] = v
	}

	require.NotNil(t, byName["double"].Initializer)
	assert.Equal(t, source.KindArrowFunction, byName["double"].Initializer.Kind)
	assert.Equal(t, "(n: number) => n * 2", byName["double"].Initializer.Text)

	require.NotNil(t, byName["fetchAll"].Initializer)
	assert.Equal(t, source.KindArrowFunction, byName["fetchAll"].Initializer.Kind)
	assert.Equal(t, "async () => []", byName["fetchAll"].Initializer.Text)

	assert.Nil(t, byName["counter"].Initializer)
	assert.Nil(t, byName["VERSION"].Initializer)

	require.NotNil(t, byName["legacy"].Initializer)
	assert.Equal(t, source.KindOther, byName["legacy"].Initializer.Kind)
	assert.Equal(t, "1", byName["legacy"].Initializer.Text)
}

func TestParseFile_TSXComponents(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "components.tsx", readFixture(t, "typescript/components.tsx"))
	require.NoError(t, err)
	require.NoError(t, f.Err)
	assert.Equal(t, source.TSX, f.Language)

	vars := f.Variables()
	require.Len(t, vars, 6)

	kinds := map[string]source.Kind{}
	for _, v := range vars {
		require.NotNil(t, v.Initializer, v.Name)
		kinds[v.Name] = v.Initializer.Kind
	}
	assert.Equal(t, source.KindJSXElement, kinds["Widget"])
	assert.Equal(t, source.KindJSXElement, kinds["Panel"])
	assert.Equal(t, source.KindArrowFunction, kinds["Button"])
	assert.Equal(t, source.KindArrowFunction, kinds["Label"])
	assert.Equal(t, source.KindOther, kinds["Wrapped"])
	assert.Equal(t, source.KindOther, kinds["ref"])

	assert.Equal(t, `<div className="widget" />`, vars[0].Initializer.Text)

	fns := f.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "App", fns[0].Name)
	assert.Contains(t, fns[0].Text(), "export default function App()")
}

func TestParseFile_JavaScript(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "legacy.js", readFixture(t, "javascript/legacy.js"))
	require.NoError(t, err)
	require.NoError(t, f.Err)
	assert.Equal(t, source.JavaScript, f.Language)

	// Anonymous default export keeps an empty name.
	assert.Equal(t, []string{"greet", ""}, names(f.Functions()))
	assert.Equal(t, "export default function () {}", f.Functions()[1].Text())
	assert.Equal(t, []string{"Greeter"}, names(f.Classes()))
	assert.Equal(t, []string{"shout"}, names(f.Variables()))
}

func TestParseFile_SyntaxError(t *testing.T) {
	t.Parallel()

	p := NewParser()
	src := []byte("const ok = 1;\nfunction broken( {\n")
	f, err := p.ParseFile(context.Background(), "src/broken.ts", src)
	require.NoError(t, err)
	require.Error(t, f.Err)
	assert.Empty(t, f.Decls)

	var perr *source.ParseError
	require.True(t, errors.As(f.Err, &perr))
	assert.Equal(t, "src/broken.ts", perr.Path)
	assert.GreaterOrEqual(t, perr.Line, 2)
	assert.True(t, errors.Is(f.Err, source.ErrMalformed))
}

func TestDescribeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		missing bool
		text    string
		want    string
	}{
		{"missing node", ";", true, "", `missing ;`},
		{"empty text", "ERROR", false, "  ", "unexpected input"},
		{"first line only", "ERROR", false, "foo(\nbar", `unexpected "foo("`},
		{"short ascii", "ERROR", false, "{", `unexpected "{"`},
		{"long ascii", "ERROR", false, strings.Repeat("a", 50), `unexpected "` + strings.Repeat("a", 40) + `..."`},
		{"multi-byte runes", "ERROR", false, strings.Repeat("ü", 50), `unexpected "` + strings.Repeat("ü", 40) + `..."`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeError(tt.kind, tt.missing, tt.text)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestParseFile_SyntaxErrorDetailIsValidUTF8(t *testing.T) {
	t.Parallel()

	src := []byte("export const label = \"" + strings.Repeat("日本", 30) + "\" +;\n")
	f, err := NewParser().ParseFile(context.Background(), "i18n.ts", src)
	require.NoError(t, err)

	var perr *source.ParseError
	require.True(t, errors.As(f.Err, &perr))
	assert.True(t, utf8.ValidString(perr.Error()))
}

func TestParseFile_EmptyFile(t *testing.T) {
	t.Parallel()

	p := NewParser()
	f, err := p.ParseFile(context.Background(), "empty.ts", []byte{})
	require.NoError(t, err)
	require.NoError(t, f.Err)
	assert.NotNil(t, f.Decls)
	assert.Empty(t, f.Decls)
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	p := NewParser()
	_, err := p.ParseFile(context.Background(), "notes.md", []byte("# notes"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
}

func TestParseFile_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, "a.ts", []byte("function a() {}"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile_Cache(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(16)
	require.NoError(t, err)
	defer cache.Close()

	p := NewParser(WithCache(cache))
	src := []byte("export function foo() {}\nconst bar = () => 1;\n")

	first, err := p.ParseFile(context.Background(), "a.ts", src)
	require.NoError(t, err)
	second, err := p.ParseFile(context.Background(), "copy/a.ts", src)
	require.NoError(t, err)

	assert.Equal(t, "copy/a.ts", second.Path)
	assert.Equal(t, first.Decls, second.Decls)
	assert.GreaterOrEqual(t, cache.Stats().Hits, int64(1))
}

func TestParseFile_CachedSyntaxErrorUsesCallerPath(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(16)
	require.NoError(t, err)
	defer cache.Close()

	p := NewParser(WithCache(cache))
	src := []byte("class {")

	_, err = p.ParseFile(context.Background(), "one.ts", src)
	require.NoError(t, err)
	f, err := p.ParseFile(context.Background(), "two.ts", src)
	require.NoError(t, err)

	var perr *source.ParseError
	require.True(t, errors.As(f.Err, &perr))
	assert.Equal(t, "two.ts", perr.Path)
}

func TestNewCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := NewCache(0)
	assert.Error(t, err)
}
