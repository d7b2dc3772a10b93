package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Entry is a cached exchange: the generated reply plus the quick
// feedback derived from the input that produced it.
type Entry struct {
	Response string
	Feedback string
}

// Cache is the interface for the response cache.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get marks the entry most recently used on a hit; a miss has no
//   side effect.
// - Put inserts or updates and marks most recently used; exceeding
//   capacity evicts exactly the least recently used entry.
type Cache interface {
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
	Len() int
}

// Stats reports cache performance counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
