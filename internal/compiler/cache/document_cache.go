package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/parser"
)

// DefaultSize is the number of documents kept when no size is configured
const DefaultSize = 64

// CachedDocument is a parsed document with metadata
type CachedDocument struct {
	Document *ast.Document
	Hash     uint64
	Path     string
	Size     int
	CachedAt time.Time
}

// Stats reports cache effectiveness
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// DocumentCache is a bounded LRU of parsed documents keyed by content hash.
// Parsed trees are never mutated, so one cached document may be handed to
// several workers at once. Safe for concurrent use.
type DocumentCache struct {
	entries *lru.Cache
	hasher  *FileHasher
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewDocumentCache creates a cache holding at most size documents
func NewDocumentCache(size int) (*DocumentCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create document cache: %w", err)
	}
	return &DocumentCache{
		entries: entries,
		hasher:  NewFileHasher(),
	}, nil
}

// Get retrieves a cached document by content hash
func (dc *DocumentCache) Get(hash uint64) (*CachedDocument, bool) {
	value, ok := dc.entries.Get(hash)
	if !ok {
		dc.misses.Add(1)
		return nil, false
	}
	dc.hits.Add(1)
	return value.(*CachedDocument), true
}

// Set stores a document under its content hash
func (dc *DocumentCache) Set(path string, doc *ast.Document, hash uint64, size int) {
	dc.entries.Add(hash, &CachedDocument{
		Document: doc,
		Hash:     hash,
		Path:     path,
		Size:     size,
		CachedAt: time.Now(),
	})
}

// Parse returns the cached document for data or parses and caches it.
// Parse failures are not cached. The boolean reports a cache hit.
func (dc *DocumentCache) Parse(path string, data []byte) (*ast.Document, bool, error) {
	hash := dc.hasher.HashContent(data)
	if cached, ok := dc.Get(hash); ok {
		return cached.Document, true, nil
	}

	doc, err := parser.ParseBytes(data)
	if err != nil {
		return nil, false, err
	}
	dc.Set(path, doc, hash, len(data))
	return doc, false, nil
}

// Invalidate removes an entry from the cache
func (dc *DocumentCache) Invalidate(hash uint64) {
	dc.entries.Remove(hash)
}

// InvalidateAll clears the entire cache
func (dc *DocumentCache) InvalidateAll() {
	dc.entries.Purge()
}

// Size returns the number of cached entries
func (dc *DocumentCache) Size() int {
	return dc.entries.Len()
}

// Stats returns hit and miss counters
func (dc *DocumentCache) Stats() Stats {
	return Stats{
		Hits:    dc.hits.Load(),
		Misses:  dc.misses.Load(),
		Entries: dc.entries.Len(),
	}
}
