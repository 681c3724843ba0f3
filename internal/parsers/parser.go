package parsers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/declcat/internal/source"
)

// ErrUnsupportedLanguage is returned for files with no registered grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Parser turns file contents into source.SourceFile values.
// It is safe for concurrent use.
type Parser struct {
	cache *Cache
}

// Option configures a Parser.
type Option func(*Parser)

// WithCache shares a parse cache across calls. A nil cache disables caching.
func WithCache(c *Cache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// NewParser creates a parser for TypeScript, TSX and JavaScript.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses src as the file at path (slash-separated, project-relative).
//
// Syntax errors do not fail the call: the returned SourceFile has Err set to a
// *source.ParseError and no declarations. The error return is reserved for
// unsupported extensions and cancellation.
func (p *Parser) ParseFile(ctx context.Context, path string, src []byte) (*source.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang, ok := DetectLanguage(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}

	var key cacheKey
	if p.cache != nil {
		key = newCacheKey(lang, src)
		if entry, ok := p.cache.get(key); ok {
			return entry.sourceFile(path, lang), nil
		}
	}

	entry, err := parseEntry(lang, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if p.cache != nil {
		p.cache.set(key, entry)
	}
	return entry.sourceFile(path, lang), nil
}

func parseEntry(lang source.Language, src []byte) (*cacheEntry, error) {
	tree, err := parse(lang, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		entry := &cacheEntry{syntaxErr: &source.ParseError{Line: 1, Column: 1}}
		if n := firstError(root); n != nil {
			pos := n.StartPosition()
			entry.syntaxErr.Line = int(pos.Row) + 1
			entry.syntaxErr.Column = int(pos.Column) + 1
			entry.syntaxErr.Detail = describeError(n.Kind(), n.IsMissing(), nodeText(n, src))
		}
		return entry, nil
	}

	return &cacheEntry{decls: lowerProgram(root, src)}, nil
}

// maxErrorDetail is the number of runes of offending source kept in a ParseError.
const maxErrorDetail = 40

func describeError(kind string, missing bool, text string) string {
	if missing {
		return "missing " + kind
	}
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if utf8.RuneCountInString(text) > maxErrorDetail {
		text = string([]rune(text)[:maxErrorDetail]) + "..."
	}
	if text == "" {
		return "unexpected input"
	}
	return fmt.Sprintf("unexpected %q", text)
}
