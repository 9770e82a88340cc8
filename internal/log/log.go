// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

var (
	mu        sync.Mutex
	baseLevel = log.ErrorLevel
)

// InitLogger sets up Apex with a custom handler and a log level from the
// MEMO_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("MEMO_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{Writer: os.Stdout})

	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = log.ErrorLevel
	}
	mu.Lock()
	baseLevel = l
	mu.Unlock()
	log.SetLevel(l)
}

// SetDebug is the process-wide debug switch. When on, cache load, hit/miss
// and save lines are emitted; when off, the level reverts to the one
// InitLogger chose.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	if on {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(baseLevel)
}

// CustomHandler formats log messages as one line each and writes them to
// Writer (stdout when nil).
type CustomHandler struct {
	Writer io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stdout
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	b.WriteString(e.Message)
	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}

	_, err := fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, b.String())
	return err
}
