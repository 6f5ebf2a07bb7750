package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache is a two-tier memoization layer: an in-process map checked first,
// then a per-key JSON file that survives process restarts. The disk tier is a
// pure optimization; read or write failures there are logged and never fail
// the overall call.
//
// Concurrent misses for the same key are not coalesced: two callers may both
// invoke the compute function and the last write wins. That costs a redundant
// upstream fetch at worst, never a corrupt read, since each write is a
// complete overwrite of one key's slot.
type Cache struct {
	mu  sync.RWMutex
	mem map[string]memEntry
	dir string
}

type memEntry struct {
	data   any
	expiry time.Time
}

// diskEntry is the on-disk envelope. Expiry is milliseconds since the epoch.
type diskEntry struct {
	Data   json.RawMessage `json:"data"`
	Expiry int64           `json:"expiry"`
}

// New creates a Cache whose durable tier lives under dir.
func New(dir string) *Cache {
	return &Cache{
		mem: make(map[string]memEntry),
		dir: dir,
	}
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, "cache_"+key+".json")
}

// GetCachedData returns the cached value for key, computing and storing a
// fresh one when both tiers miss. A disk-tier hit repopulates the memory
// tier. Compute errors are returned as-is and nothing is cached.
func GetCachedData[T any](c *Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	now := time.Now()

	// Memory tier.
	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if ok && entry.expiry.After(now) {
		if data, ok := entry.data.(T); ok {
			log.Printf("cache: hit (memory) %s", key)
			return data, nil
		}
	}

	// Disk tier.
	if data, ok := readDisk[T](c, key, now); ok {
		log.Printf("cache: hit (disk) %s", key)
		return data, nil
	}

	log.Printf("cache: miss %s, computing fresh data", key)
	data, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	expiry := now.Add(ttl)

	c.mu.Lock()
	c.mem[key] = memEntry{data: data, expiry: expiry}
	c.mu.Unlock()

	writeDisk(c, key, data, expiry)
	return data, nil
}

func readDisk[T any](c *Cache, key string, now time.Time) (T, bool) {
	var zero T

	raw, err := os.ReadFile(c.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: error reading disk entry for %s: %v", key, err)
		}
		return zero, false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Printf("cache: malformed disk entry for %s: %v", key, err)
		return zero, false
	}

	expiry := time.UnixMilli(entry.Expiry)
	if !expiry.After(now) {
		return zero, false
	}

	var data T
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		log.Printf("cache: cannot decode disk entry for %s: %v", key, err)
		return zero, false
	}

	// Refresh the faster tier.
	c.mu.Lock()
	c.mem[key] = memEntry{data: data, expiry: expiry}
	c.mu.Unlock()

	return data, true
}

func writeDisk[T any](c *Cache, key string, data T, expiry time.Time) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("cache: cannot encode disk entry for %s: %v", key, err)
		return
	}
	raw, err := json.Marshal(diskEntry{Data: payload, Expiry: expiry.UnixMilli()})
	if err != nil {
		log.Printf("cache: cannot encode disk envelope for %s: %v", key, err)
		return
	}
	if err := os.WriteFile(c.filePath(key), raw, 0o644); err != nil {
		log.Printf("cache: error writing disk entry for %s: %v", key, err)
	}
}
