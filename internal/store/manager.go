// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// ErrWriteFailed wraps any error raised while persisting a store.
var ErrWriteFailed = errors.New("store write failed")

// Manager is the registry of loaded stores. It holds at most one Store per
// backing path and remembers which ones changed since the last Flush.
type Manager struct {
	mu       sync.Mutex
	stores   map[string]*Store
	dirty    []string
	compress bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithCompression toggles zstd framing of written store files. Reads accept
// either form regardless of this setting.
func WithCompression(on bool) Option {
	return func(m *Manager) { m.compress = on }
}

// NewManager returns an empty registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		stores:   make(map[string]*Store),
		compress: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the store registered for path, reading it from disk on first
// use. A missing, unreadable or undecodable file yields an empty store; that is
// a whole-store cache miss, not an error.
func (m *Manager) Load(path string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[path]; ok {
		return s
	}

	start := time.Now()
	entries, err := readFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Debugf("discarding unreadable store %s", path)
		}
		entries = nil
	}

	s := newStore(path, entries)
	m.stores[path] = s
	log.Debugf("loaded store %s (%d entries) in %s", path, s.Len(), time.Since(start))
	return s
}

// MarkDirty registers s under path and queues path for the next Flush.
// Marking the same path repeatedly queues it once.
func (m *Manager) MarkDirty(path string, s *Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores[path] = s
	if !slices.Contains(m.dirty, path) {
		m.dirty = append(m.dirty, path)
	}
}

// Dirty returns the paths waiting to be flushed, in the order first marked.
func (m *Manager) Dirty() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.dirty)
}

// Flush writes every dirty store to its backing file. It stops at the first
// failure; that path and any not yet written stay dirty so a later Flush can
// retry them. Loaded stores stay registered.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.dirty) > 0 {
		path := m.dirty[0]
		if err := m.write(path); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
		}
		m.dirty = m.dirty[1:]
	}
	m.dirty = nil
	return nil
}

func (m *Manager) write(path string) error {
	s, ok := m.stores[path]
	if !ok {
		return nil
	}

	start := time.Now()
	data, err := encode(s.snapshot(), m.compress)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	log.Debugf("saved store %s (%s) in %s", path, humanize.Bytes(uint64(len(data))), time.Since(start))
	return nil
}
