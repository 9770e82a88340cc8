// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/memogo/internal/config"
	"github.com/staranto/memogo/internal/demo"
	"github.com/staranto/memogo/internal/memo"
	"github.com/staranto/memogo/internal/store"
)

// seedStore writes a store holding one fresh and one expired entry for
// demo.Expensive and one never-expiring entry for demo.expensive2.
func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.memo")
	now := time.Now()

	m := store.NewManager()
	s := m.Load(path)
	put := func(name string, args []any, kwargs memo.Kwargs, ts time.Time, ttl time.Duration, value string) {
		key, err := memo.BuildKey(name, memo.KeyArgsAndKwargs, args, kwargs)
		require.NoError(t, err)
		s.Put(key, store.Entry{Fingerprint: "fp", Timestamp: ts, TTL: ttl, Value: []byte(value)})
	}
	put("demo.Expensive", []any{1}, nil, now, time.Hour, `{"answer":1}`)
	put("demo.Expensive", []any{2}, nil, now.Add(-2*time.Hour), time.Hour, `{"answer":2}`)
	put("demo.expensive2", nil, memo.Kwargs{"kwarg1": "test"}, now, -1, `2`)
	m.MarkDirty(path, s)
	require.NoError(t, m.Flush())
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runAppContext(t, context.Background(), args...)
}

func runAppContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MEMO_CFG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MEMO_CACHE_DIR", t.TempDir())

	argv := append([]string{"memo"}, args...)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	err = app.Run(ctx, argv)
	return buf.String(), err
}

func TestInspect_JSON(t *testing.T) {
	path := seedStore(t)

	out, err := runApp(t, "inspect", "--store", path, "--output", "json")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	expired := map[string]bool{}
	for _, r := range rows {
		expired[r["key"].(string)] = r["expired"].(bool)
	}
	assert.False(t, expired[`["demo.Expensive",[["int",1]],{}]`])
	assert.True(t, expired[`["demo.Expensive",[["int",2]],{}]`])
	assert.False(t, expired[`["demo.expensive2",[],{"kwarg1":["string","test"]}]`])
}

func TestInspect_FuncQueryAndFilter(t *testing.T) {
	path := seedStore(t)

	out, err := runApp(t, "inspect", "--store", path, "-o", "json",
		"--func", "demo.Expensive", "--query", "answer", "--filter", "expired=false")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0]["value"])
	assert.Equal(t, "1h0m0s", rows[0]["ttl"])
}

func TestInspect_Text(t *testing.T) {
	path := seedStore(t)

	out, err := runApp(t, "inspect", "--store", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "demo.expensive2")
	assert.Contains(t, out, "never")
}

func TestInspect_MissingStore(t *testing.T) {
	_, err := runApp(t, "inspect", "--store", filepath.Join(t.TempDir(), "nope.memo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store at")
}

func TestInspect_BadOutput(t *testing.T) {
	path := seedStore(t)
	_, err := runApp(t, "inspect", "--store", path, "--output", "xml")
	assert.Error(t, err)
}

func TestPurge(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantLeft int
		wantOut  string
	}{
		{name: "expired", args: []string{"--expired"}, wantLeft: 2, wantOut: "purged 1 of 3"},
		{name: "func", args: []string{"--func", "demo.Expensive"}, wantLeft: 1, wantOut: "purged 2 of 3"},
		{name: "func and expired", args: []string{"--func", "demo.expensive2", "-x"}, wantLeft: 3, wantOut: "purged 0 of 3"},
		{name: "all", args: []string{"--all"}, wantLeft: 0, wantOut: "purged 3 of 3"},
		{name: "older than", args: []string{"--older-than", "1h"}, wantLeft: 2, wantOut: "purged 1 of 3"},
		{name: "older than seconds", args: []string{"--older-than", "60"}, wantLeft: 2, wantOut: "purged 1 of 3"},
		{name: "older than and func", args: []string{"--older-than", "1h", "--func", "demo.expensive2"}, wantLeft: 3, wantOut: "purged 0 of 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := seedStore(t)

			out, err := runApp(t, append([]string{"purge", "--store", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)

			assert.Equal(t, tt.wantLeft, store.NewManager().Load(path).Len())
		})
	}
}

func TestPurge_BadAge(t *testing.T) {
	path := seedStore(t)
	_, err := runApp(t, "purge", "--store", path, "--older-than", "soon")
	assert.Error(t, err)
	assert.Equal(t, 3, store.NewManager().Load(path).Len())
}

func TestPurge_NothingSelected(t *testing.T) {
	path := seedStore(t)
	_, err := runApp(t, "purge", "--store", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing selected")
	assert.Equal(t, 3, store.NewManager().Load(path).Len())
}

func TestCompletion(t *testing.T) {
	out, err := runApp(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _memo memo")

	out, err = runApp(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "compdef _memo memo")

	t.Setenv("SHELL", "/bin/fish")
	_, err = runApp(t, "completion")
	assert.Error(t, err)
}

func TestSelftest(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time scenario")
	}

	out, err := runApp(t, "selftest", "--codec", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "pass")
}

func TestSelftest_CancelledRunLeavesNoDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time scenario")
	}

	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	// Cancel during the wait for the first entry to expire, after that
	// entry has been computed but before anything is flushed.
	ctx, cancel := context.WithTimeout(context.Background(), demo.Work+demo.Work/2)
	defer cancel()

	_, err := runAppContext(t, ctx, "selftest")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	left, err := filepath.Glob(filepath.Join(tmp, "memo-selftest-*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSelftest_BadCodec(t *testing.T) {
	_, err := runApp(t, "selftest", "--codec", "gob")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, OutputValidator("yaml"))
	assert.Error(t, OutputValidator("raw"))
	assert.NoError(t, CodecValidator("json"))
	assert.Error(t, CodecValidator("xml"))
	assert.Error(t, JammedFlagValidator("--oops"))
	assert.NoError(t, FlagValidators("x", JammedFlagValidator))
}

func TestPolicy(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "memo.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("store: /tmp/x.memo\nttl: 90s\nkey: args\n"), 0o600))
	saved := config.Config
	t.Cleanup(func() { config.Config = saved })

	argv := []string{"memo", "policy", "-o", "json"}
	t.Setenv("MEMO_CFG", cfg)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)
	var buf bytes.Buffer
	app.Writer = &buf
	require.NoError(t, app.Run(context.Background(), argv))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "/tmp/x.memo", rows[0]["store"])
	assert.Equal(t, "1m30s", rows[0]["ttl"])
	assert.Equal(t, "args", rows[0]["key"])
}

func TestPolicy_Defaults(t *testing.T) {
	saved := config.Config
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = saved })

	out, err := runApp(t, "policy", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"never"`)
	assert.Contains(t, out, `"args_and_kwargs"`)
}

func TestValuePreview(t *testing.T) {
	long := strings.Repeat("é", 60)
	got := valuePreview([]byte(long), "")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, previewLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", valuePreview([]byte("short"), ""))
	assert.Equal(t, "b", valuePreview([]byte(`{"a":"b"}`), "a"))
	assert.Equal(t, "-", valuePreview([]byte("not json"), "a"))
}

func TestPurgeSelector(t *testing.T) {
	now := time.Now()
	s := store.NewManager().Load(filepath.Join(t.TempDir(), "x.memo"))
	s.Put(`["a"]`, store.Entry{Timestamp: now, TTL: -1})
	s.Put(`["b"]`, store.Entry{Timestamp: now.Add(-time.Minute), TTL: time.Second})

	assert.Equal(t, 0, Purge(s, PurgeSelector{Func: "c"}, now))
	assert.Equal(t, 1, Purge(s, PurgeSelector{Expired: true}, now))
	assert.Equal(t, []string{`["a"]`}, s.Keys())
}
