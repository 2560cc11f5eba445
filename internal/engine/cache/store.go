package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

// zstdMagic starts every zstd frame. Entries are plain JSON or zstd-compressed JSON and
// readers accept both.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd} //nolint:gochecknoglobals // Frame constant.

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as JSON files in a directory, optionally zstd-compressed.
// Safe for concurrent use.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration
	now       func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.RWMutex
}

// Option configures a FileStore.
type Option func(*FileStore) error

// WithCompression stores new entries zstd-compressed.
func WithCompression() Option {
	return func(s *FileStore) error {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		s.encoder = enc
		return nil
	}
}

// NewFileStore creates the store, creating directory when needed.
// A disabled store answers every call with ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttl time.Duration, opts ...Option) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false, now: time.Now}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	s := &FileStore{
		directory: directory,
		enabled:   true,
		ttl:       ttl,
		now:       time.Now,
		decoder:   dec,
	}
	for _, opt := range opts {
		if err = opt(s); err != nil {
			dec.Close()
			return nil, err
		}
	}
	return s, nil
}

// Compressed reports whether new entries are written zstd-compressed.
func (s *FileStore) Compressed() bool {
	return s.encoder != nil
}

// Get returns the entry for key, ErrCacheNotFound or ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	path := s.keyToFilePath(key)
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	entry, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Set stores data under key, overwriting any previous entry.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entry := NewEntry(key, data, s.ttl, s.now())
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if s.encoder != nil {
		encoded = s.encoder.EncodeAll(encoded, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// Delete removes key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	now := s.now()
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != cacheFileExtension {
			continue
		}
		path := filepath.Join(s.directory, dirEntry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		entry, decodeErr := s.decode(data)
		if decodeErr != nil {
			continue
		}
		if entry.ExpiredAt(now) && os.Remove(path) == nil {
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}
	count := 0
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() && filepath.Ext(dirEntry.Name()) == cacheFileExtension {
			count++
		}
	}
	return count, nil
}

// IsEnabled reports whether the store is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// TTL returns the lifetime given to new entries.
func (s *FileStore) TTL() time.Duration {
	return s.ttl
}

// decode parses a stored entry, decompressing it first when it is a zstd frame.
func (s *FileStore) decode(data []byte) (*Entry, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress cache entry: %w", err)
		}
		data = plain
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// keyToFilePath hashes the key so any entity id maps to a safe file name.
func (s *FileStore) keyToFilePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.directory, hex.EncodeToString(sum[:])+cacheFileExtension)
}
