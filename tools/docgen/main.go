// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/command"
)

// Man page generator. Walks the memo command tree and writes
// docs/man/share/man1/memo-<cmd>.1 for every subcommand, plus memo.1.

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	if err := os.MkdirAll(manOutDir, 0o755); err != nil {
		fatalf("creating man output dir: %v", err)
	}

	app, err := command.InitApp(context.Background(), []string{"memo"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	pages := map[string]*cli.Command{"memo": app}
	for _, cmd := range app.Commands {
		pages["memo-"+cmd.Name] = cmd
	}

	for name, cmd := range pages {
		md := commandMarkdown(name, cmd)
		path := filepath.Join(manOutDir, name+".1")
		if err := writeFileIfChanged(path, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", name, err)
		}
	}
}

// commandMarkdown renders the md2man source for one command.
func commandMarkdown(name string, cmd *cli.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 1 \"\" \"memo\" \"User Commands\"\n", strings.ToUpper(name))
	b.WriteString("==================================================\n\n")

	fmt.Fprintf(&b, "# NAME\n\n%s - %s\n\n", name, cmd.Usage)

	if cmd.UsageText != "" {
		fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", cmd.UsageText)
	}

	if len(cmd.Commands) > 0 {
		b.WriteString("# COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", sub.Name, sub.Usage)
		}
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range cmd.Flags {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", flagNames(f), flagUsage(f))
		}
	}

	return b.String()
}

func flagNames(f cli.Flag) string {
	names := make([]string, 0, len(f.Names()))
	for _, n := range f.Names() {
		if len(n) == 1 {
			names = append(names, "-"+n)
		} else {
			names = append(names, "--"+n)
		}
	}
	return strings.Join(names, ", ")
}

func flagUsage(f cli.Flag) string {
	if df, ok := f.(cli.DocGenerationFlag); ok {
		return df.GetUsage()
	}
	return ""
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, data, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, data, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)) {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
