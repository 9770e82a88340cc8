// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/memo"
	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/output"
)

var policyColumns = []string{"store", "ttl", "key"}

// PolicyCommandAction shows the default policy the config file gives wrapped
// functions.
func PolicyCommandAction(ctx context.Context, cmd *cli.Command) error {
	p, err := memo.ConfiguredPolicy()
	if err != nil {
		return err
	}

	row := map[string]interface{}{
		"store": p.StorePath,
		"ttl":   ttlText(p.TTL),
		"key":   p.KeyMode.String(),
	}
	return output.Emit(writer(cmd), []map[string]interface{}{row}, policyColumns, outputOptions(cmd))
}

// PolicyCommandBuilder constructs the cli.Command definition for "policy".
func PolicyCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "policy",
		Usage:     "show the configured default caching policy",
		UsageText: "memo policy [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewOutputFlags("policy", meta.Config.Source),
		Action: PolicyCommandAction,
	}
}
