// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryValid(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		entry       Entry
		fingerprint string
		now         time.Time
		want        bool
	}{
		{
			name:        "never expires",
			entry:       Entry{Fingerprint: "abc", Timestamp: base, TTL: -1},
			fingerprint: "abc",
			now:         base.Add(24 * 365 * time.Hour),
			want:        true,
		},
		{
			name:        "within ttl",
			entry:       Entry{Fingerprint: "abc", Timestamp: base, TTL: time.Second},
			fingerprint: "abc",
			now:         base.Add(999 * time.Millisecond),
			want:        true,
		},
		{
			name:        "ttl elapsed",
			entry:       Entry{Fingerprint: "abc", Timestamp: base, TTL: time.Second},
			fingerprint: "abc",
			now:         base.Add(time.Second),
			want:        false,
		},
		{
			name:        "zero ttl is always stale",
			entry:       Entry{Fingerprint: "abc", Timestamp: base, TTL: 0},
			fingerprint: "abc",
			now:         base,
			want:        false,
		},
		{
			name:        "fingerprint changed",
			entry:       Entry{Fingerprint: "abc", Timestamp: base, TTL: -1},
			fingerprint: "xyz",
			now:         base,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Valid(tt.fingerprint, tt.now))
		})
	}
}

func TestStore_Keys(t *testing.T) {
	s := newStore("x", nil)
	s.Put("b", Entry{})
	s.Put("a", Entry{})
	s.Put("c", Entry{})

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, s.Keys())
}

func TestManager_LoadReturnsSameInstance(t *testing.T) {
	m := NewManager()
	path := filepath.Join(t.TempDir(), "cache.memo")

	s1 := m.Load(path)
	s2 := m.Load(path)

	assert.Same(t, s1, s2)
	assert.Equal(t, path, s1.Path())
	assert.Equal(t, 0, s1.Len())
}

func TestManager_LoadRecoversFromBadFiles(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "garbage", content: []byte("not a store")},
		{name: "truncated zstd", content: append([]byte{}, zstdMagic...)},
		{name: "wrong json shape", content: []byte(`{"entries": [1, 2, 3]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, tt.content, 0o600))

			s := NewManager().Load(path)
			assert.NotNil(t, s)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestManager_FlushWithoutChangesWritesNothing(t *testing.T) {
	m := NewManager()
	path := filepath.Join(t.TempDir(), "cache.memo")

	m.Load(path)
	require.NoError(t, m.Flush())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "flush should not create an unchanged store")
}

func TestManager_FlushRoundTrip(t *testing.T) {
	for _, compress := range []bool{true, false} {
		t.Run(map[bool]string{true: "zstd", false: "plain"}[compress], func(t *testing.T) {
			dir := t.TempDir()
			changed := filepath.Join(dir, "changed.memo")
			untouched := filepath.Join(dir, "untouched.memo")
			ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

			m := NewManager(WithCompression(compress))
			m.Load(untouched)
			s := m.Load(changed)
			s.Put(`["f",[1]]`, Entry{Fingerprint: "fp", Timestamp: ts, TTL: -1, Value: []byte(`1`)})
			m.MarkDirty(changed, s)
			m.MarkDirty(changed, s)
			assert.Equal(t, []string{changed}, m.Dirty())

			require.NoError(t, m.Flush())
			assert.Empty(t, m.Dirty())
			assert.FileExists(t, changed)
			assert.NoFileExists(t, untouched)

			// Still registered after flush.
			assert.Same(t, s, m.Load(changed))

			reloaded := NewManager().Load(changed)
			e, ok := reloaded.Get(`["f",[1]]`)
			require.True(t, ok)
			assert.Equal(t, "fp", e.Fingerprint)
			assert.True(t, ts.Equal(e.Timestamp))
			assert.Equal(t, time.Duration(-1), e.TTL)
			assert.Equal(t, []byte(`1`), e.Value)
		})
	}
}

func TestManager_FlushIsIdempotent(t *testing.T) {
	m := NewManager()
	path := filepath.Join(t.TempDir(), "cache.memo")

	s := m.Load(path)
	s.Put("k", Entry{TTL: -1})
	m.MarkDirty(path, s)
	require.NoError(t, m.Flush())

	require.NoError(t, os.Remove(path))
	require.NoError(t, m.Flush())
	assert.NoFileExists(t, path)
}

func TestManager_FlushFailureKeepsDirty(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	bad := filepath.Join(blocker, "cache.memo")
	good := filepath.Join(dir, "good.memo")

	m := NewManager()
	for _, p := range []string{bad, good} {
		s := m.Load(p)
		s.Put("k", Entry{TTL: -1})
		m.MarkDirty(p, s)
	}

	err := m.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, err.Error(), bad)
	var pathErr *fs.PathError
	assert.ErrorAs(t, err, &pathErr, "the I/O cause stays in the chain")
	assert.Equal(t, []string{bad, good}, m.Dirty())
	assert.NoFileExists(t, good)
}

func TestManager_FlushCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "cache.memo")

	m := NewManager()
	s := m.Load(path)
	s.Put("k", Entry{TTL: -1})
	m.MarkDirty(path, s)

	require.NoError(t, m.Flush())
	assert.FileExists(t, path)
}
