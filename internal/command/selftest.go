// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/cacheutil"
	"github.com/staranto/memogo/internal/demo"
	"github.com/staranto/memogo/internal/memo"
	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/store"
)

// SelftestCommandAction runs the demo scenario against a fresh store in a
// temporary directory.
func SelftestCommandAction(ctx context.Context, cmd *cli.Command) error {
	codec, err := memo.CodecByName(cmd.String("codec"))
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "memo-selftest-")
	if err != nil {
		return fmt.Errorf("failed to create selftest directory: %w", err)
	}
	path := filepath.Join(dir, memo.DefaultStorePath)

	w := writer(cmd)
	if cmd.Bool("keep") {
		fmt.Fprintf(w, "store: %s\n", path)
	} else {
		defer os.RemoveAll(dir)
	}

	if !cacheutil.Enabled() {
		log.Warn("caching disabled by MEMO_CACHE; expect the hit checks to fail")
	}

	// A private Manager keeps the root After hook from flushing a failed
	// run back into the removed directory.
	mz := memo.New(store.NewManager(),
		memo.WithCodec(codec),
		memo.WithEnabled(cacheutil.Enabled()),
	)
	return demo.Run(ctx, mz, path, w)
}

// SelftestCommandBuilder constructs the cli.Command definition for "selftest".
func SelftestCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "selftest",
		Usage:     "check memoization end to end with timed demo functions",
		UsageText: "memo selftest [--codec json|yaml] [--keep]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NameSpacedValueChainFlagFromConfigFile("selftest", meta.Config.Source, &cli.StringFlag{
				Name:    "codec",
				Usage:   "result encoding (json or yaml)",
				Sources: cli.NewValueSourceChain(cli.EnvVar("MEMO_CODEC")),
				Value:   "json",
				Validator: func(value string) error {
					return FlagValidators(value, CodecValidator)
				},
			}),
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "keep the selftest store and print its path",
			},
		},
		Action: SelftestCommandAction,
	}
}
