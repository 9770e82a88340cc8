// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/memogo/internal/store"
)

// DefaultStorePath is used when a Policy names no store.
const DefaultStorePath = ".cache.memo"

// ErrValueEncode is returned when a freshly computed result cannot be encoded
// for storage.
var ErrValueEncode = errors.New("cannot encode result")

// Fn is the shape every memoized function is adapted to: positional
// arguments, keyword arguments, and a result or error.
type Fn[R any] func(args []any, kwargs Kwargs) (R, error)

// Memoizer wraps functions against the stores of one Manager.
type Memoizer struct {
	manager *store.Manager
	codec   Codec
	now     func() time.Time
	enabled bool
}

// Option customizes a Memoizer.
type Option func(*Memoizer)

// WithCodec sets how results are encoded. Defaults to JSONCodec.
func WithCodec(c Codec) Option {
	return func(mz *Memoizer) { mz.codec = c }
}

// WithClock replaces time.Now for timestamps and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(mz *Memoizer) { mz.now = now }
}

// WithEnabled(false) makes every wrapped function call straight through to
// its implementation.
func WithEnabled(on bool) Option {
	return func(mz *Memoizer) { mz.enabled = on }
}

// New returns a Memoizer backed by manager.
func New(manager *store.Manager, opts ...Option) *Memoizer {
	mz := &Memoizer{
		manager: manager,
		codec:   JSONCodec{},
		now:     time.Now,
		enabled: true,
	}
	for _, opt := range opts {
		opt(mz)
	}
	return mz
}

// Manager returns the registry the Memoizer writes to.
func (mz *Memoizer) Manager() *store.Manager {
	return mz.manager
}

// Flush persists every store changed since the last Flush. Call it before
// the process exits; results memoized after the last Flush are otherwise lost.
func (mz *Memoizer) Flush() error {
	return mz.manager.Flush()
}

type wrapConfig struct {
	name        string
	fingerprint Fingerprinter
}

// WrapOption customizes a single wrapped function.
type WrapOption func(*wrapConfig)

// WithName sets the function identity used in cache keys. Defaults to the
// package-qualified symbol name, e.g. "demo.Expensive".
func WithName(name string) WrapOption {
	return func(c *wrapConfig) { c.name = name }
}

// WithFingerprint overrides how the function's implementation is identified.
// Defaults to FuncFingerprint of the wrapped function.
func WithFingerprint(fp Fingerprinter) WrapOption {
	return func(c *wrapConfig) { c.fingerprint = fp }
}

// Cache returns a decorator that applies policy to any Fn handed to it.
//
//	policy := memo.DefaultPolicy().WithTTL(time.Minute).WithKeyMode(memo.KeyArgs)
//	cached := memo.Cache[int](mz, policy)(slow)
func Cache[R any](mz *Memoizer, policy Policy, opts ...WrapOption) func(Fn[R]) Fn[R] {
	return func(fn Fn[R]) Fn[R] {
		return Wrap(mz, policy, fn, opts...)
	}
}

// Wrap memoizes fn under policy. The store is loaded now; the fingerprint is
// recomputed on every call.
func Wrap[R any](mz *Memoizer, policy Policy, fn Fn[R], opts ...WrapOption) Fn[R] {
	return wrap(mz, policy, fn, fn, opts)
}

// Wrap1 memoizes a single-argument function, keeping its signature. The
// argument is the only positional argument; there are no keyword arguments.
func Wrap1[A, R any](mz *Memoizer, policy Policy, fn func(A) (R, error), opts ...WrapOption) func(A) (R, error) {
	w := wrap(mz, policy, func(args []any, _ Kwargs) (R, error) {
		a, _ := args[0].(A)
		return fn(a)
	}, fn, opts)

	return func(a A) (R, error) {
		return w([]any{a}, nil)
	}
}

// wrap builds the memoized callable. identity is the function whose name and
// source identify the cache entries; it differs from fn when fn is an adapter.
func wrap[R any](mz *Memoizer, policy Policy, fn Fn[R], identity any, opts []WrapOption) Fn[R] {
	var cfg wrapConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = shortName(FuncName(identity))
	}
	if cfg.fingerprint == nil {
		cfg.fingerprint = FuncFingerprint(identity)
	}
	if policy.StorePath == "" {
		policy.StorePath = DefaultStorePath
	}

	// Interface results keep their dynamic type through the store.
	dynamic := reflect.TypeFor[R]().Kind() == reflect.Interface

	s := mz.manager.Load(policy.StorePath)
	log.Debugf("memoizing %s in %s (ttl=%s, key=%s)", cfg.name, policy.StorePath, policy.TTL, policy.KeyMode)

	return func(args []any, kwargs Kwargs) (R, error) {
		var zero R

		if !mz.enabled {
			return fn(args, kwargs)
		}

		l := log.WithField("func", cfg.name)
		l.Debug("checking cache")

		key, err := BuildKey(cfg.name, policy.KeyMode, args, kwargs)
		if err != nil {
			return zero, err
		}

		fp, err := cfg.fingerprint()
		if err != nil {
			return zero, fmt.Errorf("%w: %s: %w", ErrFingerprint, cfg.name, err)
		}

		if e, ok := s.Get(key); ok && e.Valid(fp, mz.now()) {
			res, err := decodeResult[R](mz.codec, e.Value, dynamic)
			if err == nil {
				l.Debug("cache hit")
				return res, nil
			}
			l.WithError(err).Debug("cached value unreadable")
		}

		l.Debug("cache miss")
		res, err := fn(args, kwargs)
		if err != nil {
			return res, err
		}

		start := time.Now()
		var stored any = res
		if dynamic {
			stored = encodeDynamic(stored)
		}
		value, err := mz.codec.Marshal(stored)
		if err != nil {
			return zero, fmt.Errorf("%w for %s: %v", ErrValueEncode, cfg.name, err)
		}
		s.Put(key, store.Entry{
			Fingerprint: fp,
			Timestamp:   mz.now(),
			TTL:         policy.TTL,
			Value:       value,
		})
		mz.manager.MarkDirty(policy.StorePath, s)
		l.Debugf("saved cache in %s", time.Since(start))

		return res, nil
	}
}

func decodeResult[R any](codec Codec, data []byte, dynamic bool) (R, error) {
	var res R
	if !dynamic {
		err := codec.Unmarshal(data, &res)
		return res, err
	}

	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return res, err
	}
	v, err := decodeDynamic(raw)
	if err != nil || v == nil {
		return res, err
	}
	res, ok := v.(R)
	if !ok {
		return res, fmt.Errorf("cached %T does not implement %s", v, reflect.TypeFor[R]())
	}
	return res, nil
}

// shortName trims the import path from a symbol name:
// "github.com/x/y/demo.Expensive" becomes "demo.Expensive".
func shortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
