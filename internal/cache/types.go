package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the disk capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cached data cannot be decoded
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// CacheLevel represents the cache tier
type CacheLevel int

const (
	// CacheLevelL1 represents the in-memory page map
	CacheLevelL1 CacheLevel = iota

	// CacheLevelL2 represents the disk store
	CacheLevelL2
)

// String returns the string representation of the cache level
func (l CacheLevel) String() string {
	switch l {
	case CacheLevelL1:
		return "L1-Memory"
	case CacheLevelL2:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// CacheStats holds text cache metrics.
type CacheStats struct {
	// Current state
	Document string // ID of the document whose pages are held
	Entries  int    // Pages held in memory

	// Lookups
	Hits    int64   // Served from memory
	Misses  int64   // Not in memory
	HitRate float64 // hits / (hits + misses)

	// Extraction
	Extractions int64 // Calls into the document
	Failures    int64 // Extractions that returned an error
	Shared      int64 // Lookups that waited on another caller's extraction
	DiskHits    int64 // Misses served by the disk store
}

// DiskStats holds disk store metrics.
type DiskStats struct {
	Capacity  int64 // Maximum size in bytes
	Size      int64 // Current size in bytes on disk
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64

	LastAccess time.Time
	LastEvict  time.Time
}

// DiskConfig holds configuration for the disk store.
type DiskConfig struct {
	Path             string // Directory for cache files
	Capacity         int64  // Bytes
	CompressionLevel int    // Zstd compression level (0 disables, 1-22)
}

// DefaultDiskConfig returns the default disk store configuration rooted at
// path.
func DefaultDiskConfig(path string) DiskConfig {
	return DiskConfig{
		Path:             path,
		Capacity:         64 * 1024 * 1024, // 64MB
		CompressionLevel: 3,
	}
}
