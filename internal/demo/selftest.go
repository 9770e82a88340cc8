// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"

	"github.com/staranto/memogo/internal/memo"
)

// threshold separates a cache hit from a recomputation.
const threshold = Work / 2

type step struct {
	name string
	call func() (int, error)
	want int
	hit  bool
	wait time.Duration
}

// Run exercises the demo functions against a store at storePath, which
// should not already hold demo entries, then flushes it. Each step is
// reported to w; the first failing step is returned as an error.
func Run(ctx context.Context, mz *memo.Memoizer, storePath string, w io.Writer) error {
	fns := Bind(mz, storePath)

	steps := []step{
		{name: "Expensive(1) computes", call: func() (int, error) { return fns.Expensive(1) }, want: 1},
		{name: "Expensive(1) hits", call: func() (int, error) { return fns.Expensive(1) }, want: 1, hit: true},
		{name: "Expensive(1) recomputes after ttl", call: func() (int, error) { return fns.Expensive(1) }, want: 1, wait: Work + Work/2},
		{name: "Expensive(2) computes", call: func() (int, error) { return fns.Expensive(2) }, want: 2},
		{name: `Expensive2(2, kwarg1="test") computes`, call: func() (int, error) { return fns.Expensive2(2, "test") }, want: 2},
		{name: `Expensive2(1, kwarg1="test") hits`, call: func() (int, error) { return fns.Expensive2(1, "test") }, want: 2, hit: true},
		{name: `Expensive2(1, kwarg1="test2") computes`, call: func() (int, error) { return fns.Expensive2(1, "test2") }, want: 1},
	}

	for _, s := range steps {
		if s.wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.wait):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		got, err := s.call()
		took := time.Since(start)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}

		log.WithField("took", took).Debug(s.name)
		if got != s.want {
			return fmt.Errorf("%s: got %d, want %d", s.name, got, s.want)
		}
		if s.hit && took >= threshold {
			return fmt.Errorf("%s: took %s, expected a cache hit", s.name, took.Round(time.Millisecond))
		}
		if !s.hit && took < threshold {
			return fmt.Errorf("%s: took %s, expected a recomputation", s.name, took.Round(time.Millisecond))
		}
		fmt.Fprintf(w, "ok   %-40s %s\n", s.name, took.Round(time.Millisecond))
	}

	if err := mz.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, "pass")
	return nil
}
