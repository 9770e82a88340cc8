// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/memo"
	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/output"
	"github.com/staranto/memogo/internal/store"
)

const previewLen = 40

var inspectColumns = []string{"func", "key", "age", "ttl", "expired", "size", "value"}

// InspectCommandAction lists the entries of a store file, one row per entry.
func InspectCommandAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("store")
	if err := requireStoreFile(path); err != nil {
		return err
	}

	s := manager(cmd).Load(path)
	rows := EntryRows(s, time.Now(), cmd.String("func"), cmd.String("query"))
	log.Debugf("inspect: %d of %d entries selected from %s", len(rows), s.Len(), path)

	rows = output.FilterRows(rows, cmd.String("filter"))
	return output.Emit(writer(cmd), rows, inspectColumns, outputOptions(cmd))
}

// EntryRows turns the entries of s into display rows. fn, when set, keeps
// only that function's entries. query, when set, is a gjson path applied to
// JSON-encoded values.
func EntryRows(s *store.Store, now time.Time, fn string, query string) []map[string]interface{} {
	var rows []map[string]interface{}
	for _, key := range s.Keys() {
		e, _ := s.Get(key)
		name, _ := memo.KeyName(key)
		if fn != "" && name != fn {
			continue
		}

		rows = append(rows, map[string]interface{}{
			"func":        name,
			"key":         key,
			"fingerprint": e.Fingerprint,
			"written":     e.Timestamp.Format(time.RFC3339),
			"age":         humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			"ttl":         ttlText(e.TTL),
			"expired":     e.Expired(now),
			"size":        humanize.Bytes(uint64(len(e.Value))),
			"value":       valuePreview(e.Value, query),
		})
	}
	return rows
}

func ttlText(ttl time.Duration) string {
	if ttl < 0 {
		return "never"
	}
	return ttl.String()
}

// valuePreview shortens value to previewLen runes.
func valuePreview(value []byte, query string) string {
	s := string(value)
	if query != "" {
		if !gjson.ValidBytes(value) {
			return "-"
		}
		s = gjson.GetBytes(value, query).String()
	}
	if r := []rune(s); len(r) > previewLen {
		s = string(r[:previewLen-3]) + "..."
	}
	return s
}

// InspectCommandBuilder constructs the cli.Command definition for "inspect".
func InspectCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "list the entries of a store",
		UsageText: "memo inspect [--store PATH] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewStoreFlag("inspect", meta.Config.Source),
			&cli.StringFlag{
				Name:  "func",
				Usage: "only show entries of this function, e.g. demo.Expensive",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "gjson path to extract from each JSON value",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		}, NewOutputFlags("inspect", meta.Config.Source)...),
		Action: InspectCommandAction,
	}
}
