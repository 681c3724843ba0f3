package parsers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/declcat/internal/source"
)

var (
	grammarsOnce sync.Once
	grammars     map[source.Language]*sitter.Language
	parserPools  map[source.Language]*sync.Pool
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = map[source.Language]*sitter.Language{
			source.TypeScript: sitter.NewLanguage(typescript.LanguageTypescript()),
			source.TSX:        sitter.NewLanguage(typescript.LanguageTSX()),
			source.JavaScript: sitter.NewLanguage(javascript.Language()),
		}

		parserPools = make(map[source.Language]*sync.Pool, len(grammars))
		for l, g := range grammars {
			g := g
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := sitter.NewParser()
					if err := p.SetLanguage(g); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// extensions maps file extensions to the grammar used to parse them.
// ".d.ts" falls under ".ts".
var extensions = map[string]source.Language{
	".ts":  source.TypeScript,
	".mts": source.TypeScript,
	".cts": source.TypeScript,
	".tsx": source.TSX,
	".js":  source.JavaScript,
	".jsx": source.JavaScript,
	".mjs": source.JavaScript,
	".cjs": source.JavaScript,
}

// DetectLanguage returns the grammar for a file path based on its extension.
func DetectLanguage(path string) (source.Language, bool) {
	l, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Extensions lists every supported file extension, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// parse runs a pooled tree-sitter parser. The caller must close the tree.
func parse(l source.Language, src []byte) (*sitter.Tree, error) {
	initGrammars()

	pool, ok := parserPools[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}

	p, _ := pool.Get().(*sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for %s", l)
	}
	tree := p.Parse(src, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree for %s source", l)
	}
	return tree, nil
}
