// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package demo holds two deliberately slow functions and a self-test that
// exercises memoization against them with real timing.
package demo

import (
	"time"

	"github.com/staranto/memogo/internal/memo"
)

// Work is how long each demo function pretends to compute.
const Work = 200 * time.Millisecond

// Functions are the demo functions memoized against one Memoizer.
type Functions struct {
	// Expensive expires its results after Work and keys on its argument.
	Expensive func(k int) (int, error)
	// Expensive2 keys on its keyword argument only, so k does not
	// distinguish entries.
	Expensive2 func(k int, kwarg1 string) (int, error)
}

func expensive(k int) (int, error) {
	time.Sleep(Work)
	return k, nil
}

func expensive2(args []any, _ memo.Kwargs) (int, error) {
	time.Sleep(Work)
	k, _ := args[0].(int)
	return k, nil
}

// Bind wraps the demo functions against the store at storePath.
func Bind(mz *memo.Memoizer, storePath string) Functions {
	e2 := memo.Wrap(mz, memo.Policy{
		StorePath: storePath,
		TTL:       -1,
		KeyMode:   memo.KeyKwargs,
	}, expensive2)

	return Functions{
		Expensive: memo.Wrap1(mz, memo.Policy{
			StorePath: storePath,
			TTL:       Work,
			KeyMode:   memo.KeyArgsAndKwargs,
		}, expensive),
		Expensive2: func(k int, kwarg1 string) (int, error) {
			return e2([]any{k}, memo.Kwargs{"kwarg1": kwarg1})
		},
	}
}
