package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the smallest value worth compressing.
const compressThreshold = 512

// DiskStore is a persistent key/value store for page text with optional zstd
// compression. It evicts the least recently used entries when full.
type DiskStore struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats DiskStats
}

// diskEntry represents an entry in the disk index
type diskEntry struct {
	Key        string
	FilePath   string
	Size       int64 // Size on disk
	Stored     time.Time
	LastAccess time.Time
	Compressed bool
}

// NewDiskStore opens or creates a disk store.
func NewDiskStore(cfg DiskConfig) (*DiskStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("disk cache path is empty")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	ds := &DiskStore{
		basePath: cfg.Path,
		capacity: cfg.Capacity,
		index:    make(map[string]*diskEntry),
		stats:    DiskStats{Capacity: cfg.Capacity},
	}

	if cfg.CompressionLevel > 0 {
		var err error
		ds.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// Entries written with compression stay readable after it is turned off.
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	ds.decoder = decoder

	if err := ds.loadIndex(); err != nil {
		ds.index = make(map[string]*diskEntry)
	}
	ds.calculateSize()

	return ds, nil
}

// Get returns the value stored under key.
func (ds *DiskStore) Get(key string) ([]byte, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, ok := ds.index[key]
	if !ok {
		ds.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err == nil && entry.Compressed {
		data, err = ds.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		ds.removeLocked(key, entry)
		ds.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	ds.stats.Hits++
	ds.stats.LastAccess = entry.LastAccess

	return data, true
}

// Put stores value under key, replacing any previous value.
func (ds *DiskStore) Put(key string, value []byte) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data := value
	compressed := false
	if ds.encoder != nil && len(value) > compressThreshold {
		if packed := ds.encoder.EncodeAll(value, nil); len(packed) < len(value) {
			data = packed
			compressed = true
		}
	}

	diskSize := int64(len(data))
	if diskSize > ds.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := ds.index[key]; ok {
		ds.removeLocked(key, existing)
	}
	for ds.size+diskSize > ds.capacity && len(ds.index) > 0 {
		ds.evictOldest()
	}

	path := ds.filePath(key)
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	ds.index[key] = &diskEntry{
		Key:        key,
		FilePath:   path,
		Size:       diskSize,
		Stored:     now,
		LastAccess: now,
		Compressed: compressed,
	}
	ds.size += diskSize

	return nil
}

// Delete removes key from the store.
func (ds *DiskStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if entry, ok := ds.index[key]; ok {
		ds.removeLocked(key, entry)
	}
}

// Clear removes every entry.
func (ds *DiskStore) Clear() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, entry := range ds.index {
		os.Remove(entry.FilePath)
	}
	ds.index = make(map[string]*diskEntry)
	ds.size = 0

	return ds.saveIndex()
}

// RemoveOlderThan removes entries stored before cutoff.
func (ds *DiskStore) RemoveOlderThan(cutoff time.Time) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	removed := 0
	for key, entry := range ds.index {
		if entry.Stored.Before(cutoff) {
			ds.removeLocked(key, entry)
			removed++
		}
	}
	return removed
}

// Stats returns disk store statistics.
func (ds *DiskStore) Stats() DiskStats {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	stats := ds.stats
	stats.Size = ds.size
	stats.ItemCount = int64(len(ds.index))
	return stats
}

// Close saves the index.
func (ds *DiskStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.encoder != nil {
		ds.encoder.Close()
	}
	ds.decoder.Close()
	return ds.saveIndex()
}

// Private helper methods

func (ds *DiskStore) filePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(ds.basePath, hex.EncodeToString(hash[:16])+".txt.cache")
}

func (ds *DiskStore) removeLocked(key string, entry *diskEntry) {
	os.Remove(entry.FilePath)
	ds.size -= entry.Size
	delete(ds.index, key)
}

func (ds *DiskStore) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range ds.index {
		if oldestKey == "" || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
		}
	}

	if oldestKey != "" {
		ds.removeLocked(oldestKey, ds.index[oldestKey])
		ds.stats.Evictions++
		ds.stats.LastEvict = time.Now()
	}
}

func (ds *DiskStore) loadIndex() error {
	file, err := os.Open(filepath.Join(ds.basePath, "text.index"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(&ds.index)
}

func (ds *DiskStore) saveIndex() error {
	indexPath := filepath.Join(ds.basePath, "text.index")
	tempPath := indexPath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(file).Encode(ds.index)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, indexPath)
}

func (ds *DiskStore) calculateSize() {
	ds.size = 0
	for _, entry := range ds.index {
		ds.size += entry.Size
	}
}

// writeFile writes to a temp file and renames it into place.
func writeFile(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}
