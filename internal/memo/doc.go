// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package memo persists function results across process runs.
//
// A wrapped function's results are stored in a file-backed store keyed by the
// function's name and, depending on the KeyMode, its arguments. Each entry also
// records a fingerprint of the function's source, so editing the function
// invalidates what it cached before, and an optional TTL.
//
//	mgr := store.NewManager()
//	mz := memo.New(mgr)
//	slow := memo.Wrap1(mz, memo.DefaultPolicy(), lookup)
//	v, err := slow("key")
//	...
//	if err := mz.Flush(); err != nil { ... }
//
// Nothing is written to disk until Flush.
package memo
