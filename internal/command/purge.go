// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/config"
	"github.com/staranto/memogo/internal/memo"
	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/store"
)

// PurgeSelector decides which entries Purge removes.
type PurgeSelector struct {
	All       bool
	Expired   bool
	Func      string
	OlderThan time.Duration
}

func (p PurgeSelector) empty() bool {
	return !p.All && !p.Expired && p.Func == "" && p.OlderThan <= 0
}

// Purge deletes the selected entries from s and returns how many went. Unless
// All is set an entry must match every criterion given, so Expired with Func
// removes only that function's expired entries.
func Purge(s *store.Store, sel PurgeSelector, now time.Time) int {
	var n int
	for _, key := range s.Keys() {
		e, _ := s.Get(key)
		if !sel.All {
			if sel.Expired && !e.Expired(now) {
				continue
			}
			if sel.Func != "" {
				if name, _ := memo.KeyName(key); name != sel.Func {
					continue
				}
			}
			if sel.OlderThan > 0 && now.Sub(e.Timestamp) <= sel.OlderThan {
				continue
			}
		}
		if s.Delete(key) {
			n++
		}
	}
	return n
}

// PurgeCommandAction removes entries from a store file and writes it back.
func PurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	sel := PurgeSelector{
		All:     cmd.Bool("all"),
		Expired: cmd.Bool("expired"),
		Func:    cmd.String("func"),
	}
	if s := cmd.String("older-than"); s != "" {
		d, err := config.ParseDuration(s)
		if err != nil {
			return err
		}
		sel.OlderThan = d
	}
	if sel.empty() {
		return errors.New("nothing selected: pass --all, --expired, --func or --older-than")
	}

	path := cmd.String("store")
	if err := requireStoreFile(path); err != nil {
		return err
	}

	m := manager(cmd)
	s := m.Load(path)
	total := s.Len()

	n := Purge(s, sel, time.Now())
	log.Debugf("purge: removed %d of %d entries from %s", n, total, path)
	if n > 0 {
		m.MarkDirty(path, s)
		if err := m.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(writer(cmd), "purged %d of %d entries from %s\n", n, total, path)
	return nil
}

// PurgeCommandBuilder constructs the cli.Command definition for "purge".
func PurgeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "remove entries from a store",
		UsageText: "memo purge [--store PATH] (--all | --expired | --func NAME | --older-than AGE)",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewStoreFlag("purge", meta.Config.Source),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "remove every entry",
			},
			&cli.BoolFlag{
				Name:    "expired",
				Aliases: []string{"x"},
				Usage:   "remove entries whose ttl has elapsed",
			},
			&cli.StringFlag{
				Name:  "func",
				Usage: "remove entries of this function, e.g. demo.Expensive",
			},
			&cli.StringFlag{
				Name:  "older-than",
				Usage: "remove entries written longer ago than this (1h, 90s or seconds)",
				Validator: func(value string) error {
					return FlagValidators(value, DurationValidator)
				},
			},
		},
		Action: PurgeCommandAction,
	}
}
