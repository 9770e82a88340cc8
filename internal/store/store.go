// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"sort"
	"sync"
	"time"
)

// Entry is a single memoized result.
type Entry struct {
	// Fingerprint is the digest of the wrapped function's source at write time.
	Fingerprint string `json:"fingerprint"`
	// Timestamp is the wall-clock time the entry was written.
	Timestamp time.Time `json:"timestamp"`
	// TTL is how long the entry stays fresh. Negative means it never expires.
	TTL time.Duration `json:"ttl"`
	// Value is the encoded result. The store never looks inside it.
	Value []byte `json:"value"`
}

// Expired reports whether the entry's TTL has elapsed at now.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL < 0 {
		return false
	}
	return now.Sub(e.Timestamp) >= e.TTL
}

// Valid reports whether the entry may be reused by a function whose current
// fingerprint is fingerprint.
func (e Entry) Valid(fingerprint string, now time.Time) bool {
	return e.Fingerprint == fingerprint && !e.Expired(now)
}

// Store is the in-memory image of one backing file.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[string]Entry
}

func newStore(path string, entries map[string]Entry) *Store {
	if entries == nil {
		entries = make(map[string]Entry)
	}
	return &Store{path: path, entries: entries}
}

// Path returns the backing file path, which is also the store's identity.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry stored under key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put stores e under key, replacing whatever was there.
func (s *Store) Put(key string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// snapshot copies the entry map so it can be encoded without holding the lock.
func (s *Store) snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		m[k] = v
	}
	return m
}
