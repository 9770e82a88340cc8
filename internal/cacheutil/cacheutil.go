// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/staranto/memogo/internal/memo"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. MEMO_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/memo
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("MEMO_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "memo"), true
	}
	return "", false
}

// Enabled returns true unless MEMO_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("MEMO_CACHE")
	enabled = strings.ToLower(enabled)
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// StorePath returns where the named store lives. With no name it is the
// conventional default store. Absolute names and names containing a path
// separator are returned unchanged; bare names are placed in Dir, or in the
// working directory when Dir cannot be resolved.
func StorePath(name ...string) string {
	n := memo.DefaultStorePath
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}
	if filepath.IsAbs(n) || strings.ContainsRune(n, os.PathSeparator) {
		return n
	}
	base, ok := Dir()
	if !ok {
		return n
	}
	return filepath.Join(base, n)
}
