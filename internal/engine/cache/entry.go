package cache

import (
	"encoding/json"
	"time"
)

// Entry is a single cached value with expiration metadata.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewEntry stamps data with the current time and ttl.
func NewEntry(key string, data json.RawMessage, ttl time.Duration, now time.Time) *Entry {
	return &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the entry is expired at t.
func (e *Entry) ExpiredAt(t time.Time) bool {
	return !t.Before(e.ExpiresAt)
}

// Age returns the time elapsed since creation.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
