// Package cache provides an on-disk TTL cache for entity detail records.
//
// Entries are stored as one JSON file per key under the cache directory
// (default ~/.entitydeck/cache). Writes go through a temporary file and a rename so a
// reader never observes a half-written entry. Expired entries are reported as
// ErrCacheExpired and removed lazily or by CleanupExpired.
//
// The cache sits below the per-panel preview and detail caches: it spares the backend
// repeated lookups across sessions, while the panel caches keep their own lifetimes.
package cache
