// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_EnvOverride(t *testing.T) {
	t.Setenv("MEMO_CACHE_DIR", "/tmp/somewhere")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/somewhere", dir)
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: true},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "0", want: false},
		{value: "false", want: false},
		{value: "FALSE", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("MEMO_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "memo")
	t.Setenv("MEMO_CACHE_DIR", base)

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("MEMO_CACHE", "0")
	_, ok, err = EnsureBaseDir()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePath(t *testing.T) {
	t.Setenv("MEMO_CACHE_DIR", "/var/cache/memo")

	tests := []struct {
		name string
		in   []string
		want string
	}{
		{name: "default", in: nil, want: "/var/cache/memo/.cache.memo"},
		{name: "empty", in: []string{""}, want: "/var/cache/memo/.cache.memo"},
		{name: "bare name", in: []string{"fib.memo"}, want: "/var/cache/memo/fib.memo"},
		{name: "absolute", in: []string{"/data/x.memo"}, want: "/data/x.memo"},
		{name: "relative path", in: []string{filepath.Join("sub", "x.memo")}, want: filepath.Join("sub", "x.memo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StorePath(tt.in...))
		})
	}
}
