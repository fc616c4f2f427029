// Package cache keeps parsed save documents keyed by the hash of their raw
// bytes, so repeated runs over the same files skip parsing.
package cache

import (
	"github.com/cespare/xxhash/v2"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashContent computes the xxhash64 of the given content
func (fh *FileHasher) HashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// HashString computes the xxhash64 of the given string
func (fh *FileHasher) HashString(content string) uint64 {
	return xxhash.Sum64String(content)
}
