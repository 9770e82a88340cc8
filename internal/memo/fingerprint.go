// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"crypto/sha1" //nolint:gosec
	"encoding/base64"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
)

// ErrFingerprint is returned when a function's fingerprint cannot be computed.
var ErrFingerprint = errors.New("cannot fingerprint function")

// Fingerprinter yields the current fingerprint of a wrapped function. It is
// called on every invocation so a changed implementation is noticed without a
// restart.
type Fingerprinter func() (string, error)

// SourceFingerprint hashes source text: base64(SHA-1(text)).
func SourceFingerprint(text string) Fingerprinter {
	fp := digest(text)
	return func() (string, error) { return fp, nil }
}

// VersionFingerprint uses a caller-maintained version tag in place of the
// source. Bump the tag whenever the function's behavior changes.
func VersionFingerprint(tag string) Fingerprinter {
	return SourceFingerprint("version:" + tag)
}

// FuncFingerprint hashes the source text of fn's declaration, found through
// the runtime symbol table and the source file recorded at build time. When
// that file is not readable, as in a deployed binary, it falls back to the
// symbol name plus the VCS revision embedded by the Go toolchain, so entries
// still invalidate across rebuilds from different commits.
func FuncFingerprint(fn any) Fingerprinter {
	return func() (string, error) {
		name, file, line, err := funcLocation(fn)
		if err != nil {
			return "", err
		}
		if src, err := funcSource(file, line); err == nil {
			return digest(src), nil
		}
		return digest(name + "@" + buildRevision()), nil
	}
}

func digest(text string) string {
	sum := sha1.Sum([]byte(text)) //nolint:gosec
	return base64.StdEncoding.EncodeToString(sum[:])
}

// FuncName returns the qualified symbol name of fn, e.g. "pkg.Expensive".
func FuncName(fn any) string {
	name, _, _, err := funcLocation(fn)
	if err != nil {
		return ""
	}
	return name
}

func funcLocation(fn any) (name, file string, line int, err error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", "", 0, fmt.Errorf("%w: %T is not a function", ErrFingerprint, fn)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "", "", 0, fmt.Errorf("%w: no symbol for %T", ErrFingerprint, fn)
	}
	file, line = f.FileLine(f.Entry())
	return f.Name(), file, line, nil
}

// funcSource returns the text of the innermost function declaration or
// literal in file whose body spans line.
func funcSource(file string, line int) (string, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, src, parser.SkipObjectResolution)
	if err != nil {
		return "", err
	}

	var found ast.Node
	ast.Inspect(f, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
		default:
			return true
		}
		start, end := fset.Position(n.Pos()).Line, fset.Position(n.End()).Line
		if start <= line && line <= end {
			found = n
		}
		return true
	})
	if found == nil {
		return "", fmt.Errorf("no function at %s:%d", file, line)
	}

	return string(src[fset.Position(found.Pos()).Offset:fset.Position(found.End()).Offset]), nil
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var parts []string
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" || s.Key == "vcs.modified" {
			parts = append(parts, s.Value)
		}
	}
	if len(parts) == 0 {
		return info.Main.Version
	}
	return strings.Join(parts, "+")
}
