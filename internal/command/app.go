// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/config"
	mylog "github.com/staranto/memogo/internal/log"
	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/store"
)

// InitApp builds the root command. Every subcommand shares one store
// Manager, and the root After hook flushes whatever is still dirty.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	cfg, _ := config.Load()

	compress, _ := config.GetBool("compress", true)
	meta := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
		Manager: store.NewManager(store.WithCompression(compress)),
	}

	app := &cli.Command{
		Name:  "memo",
		Usage: "persistent function memoization",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "memo version info",
				HideDefault: true,
			},
			NewDebugFlag(cfg.Source),
		},
		Before: debugBefore,
		After: func(ctx context.Context, cmd *cli.Command) error {
			return meta.Manager.Flush()
		},
	}

	app.Commands = append(app.Commands,
		CompletionCommandBuilder(app, meta),
		InspectCommandBuilder(app, meta),
		PolicyCommandBuilder(app, meta),
		PurgeCommandBuilder(app, meta),
		SelftestCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		// --debug may follow the subcommand, after the root Before has run.
		cmd.Before = debugBefore
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}

func debugBefore(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	mylog.SetDebug(cmd.Bool("debug"))
	return ctx, nil
}
