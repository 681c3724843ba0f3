package parsers

import (
	"fmt"

	"github.com/maypok86/otter"
	"github.com/zeebo/xxh3"

	"github.com/mvp-joe/declcat/internal/source"
)

// Cache holds lowered declarations keyed by content hash and grammar, so
// unchanged files are not re-parsed across analyses. Entries are immutable.
type Cache struct {
	entries otter.Cache[cacheKey, *cacheEntry]
}

type cacheKey struct {
	sum  xxh3.Uint128
	lang source.Language
}

type cacheEntry struct {
	decls     []source.Decl
	syntaxErr *source.ParseError // Path is filled per lookup
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewCache creates a cache holding up to capacity files.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("parse cache capacity must be positive, got %d", capacity)
	}
	entries, err := otter.MustBuilder[cacheKey, *cacheEntry](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() CacheStats {
	s := c.entries.Stats()
	return CacheStats{
		Hits:   s.Hits(),
		Misses: s.Misses(),
		Size:   c.entries.Size(),
	}
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	c.entries.Close()
}

func newCacheKey(lang source.Language, src []byte) cacheKey {
	return cacheKey{sum: xxh3.Hash128(src), lang: lang}
}

func (c *Cache) get(key cacheKey) (*cacheEntry, bool) {
	return c.entries.Get(key)
}

func (c *Cache) set(key cacheKey, entry *cacheEntry) {
	c.entries.Set(key, entry)
}

func (e *cacheEntry) sourceFile(path string, lang source.Language) *source.SourceFile {
	f := &source.SourceFile{
		Path:     path,
		Language: lang,
		Decls:    e.decls,
	}
	if e.syntaxErr != nil {
		perr := *e.syntaxErr
		perr.Path = path
		f.Err = &perr
		f.Decls = []source.Decl{}
	}
	return f
}
