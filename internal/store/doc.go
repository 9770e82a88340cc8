// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store keeps file-backed memoization stores in memory, loading each
// lazily on first reference and writing back only the ones that changed when
// the owner calls Flush.
package store
