// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/meta"
	"github.com/staranto/memogo/internal/output"
	"github.com/staranto/memogo/internal/store"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// manager returns the registry carried in the command's meta, creating one
// when the command was built without it.
func manager(cmd *cli.Command) *store.Manager {
	if m := GetMeta(cmd).Manager; m != nil {
		return m
	}
	return store.NewManager()
}

// writer returns where command output goes.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// outputOptions collects the common rendering flags.
func outputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
	}
}

// requireStoreFile fails when path does not name an existing store file. The
// engine treats a missing store as empty; operator commands should not.
func requireStoreFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("no store at %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a store", path)
	}
	return nil
}
