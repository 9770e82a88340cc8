// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"fmt"
	"time"

	"github.com/staranto/memogo/internal/config"
)

// Policy is the caching configuration captured when a function is wrapped.
//
// Zero values are taken literally: TTL 0 means every result is stale at once
// and KeyMode KeyNone makes all calls share one entry. Start from
// DefaultPolicy or ConfiguredPolicy and adjust with the With methods rather
// than filling in a bare Policy.
type Policy struct {
	// StorePath is the backing file of the store to use. Empty means
	// DefaultStorePath.
	StorePath string
	// TTL is how long results stay fresh. Negative means forever.
	TTL time.Duration
	// KeyMode selects which arguments distinguish cache entries.
	KeyMode KeyMode
}

// DefaultPolicy keys on all arguments, never expires, and uses
// DefaultStorePath.
func DefaultPolicy() Policy {
	return Policy{
		StorePath: DefaultStorePath,
		TTL:       -1,
		KeyMode:   KeyArgsAndKwargs,
	}
}

// ConfiguredPolicy is DefaultPolicy overlaid with the "store", "ttl" and
// "key" settings of the loaded config file. ttl takes a Go duration or a
// number of seconds.
func ConfiguredPolicy() (Policy, error) {
	p := DefaultPolicy()

	var err error
	if p.StorePath, err = config.GetString("store", p.StorePath); err != nil {
		return p, fmt.Errorf("config store: %w", err)
	}
	if p.TTL, err = config.GetDuration("ttl", p.TTL); err != nil {
		return p, fmt.Errorf("config ttl: %w", err)
	}

	mode, err := config.GetString("key", p.KeyMode.String())
	if err != nil {
		return p, fmt.Errorf("config key: %w", err)
	}
	if p.KeyMode, err = ParseKeyMode(mode); err != nil {
		return p, fmt.Errorf("config key: %w", err)
	}
	return p, nil
}

// WithStore returns a copy of p backed by path.
func (p Policy) WithStore(path string) Policy {
	p.StorePath = path
	return p
}

// WithTTL returns a copy of p with ttl.
func (p Policy) WithTTL(ttl time.Duration) Policy {
	p.TTL = ttl
	return p
}

// WithKeyMode returns a copy of p keyed by mode.
func (p Policy) WithKeyMode(mode KeyMode) Policy {
	p.KeyMode = mode
	return p
}
