// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

package finarc

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
)

const leakDepth = 32

// leak is what the cleanup of an unclosed handle gets.
// It must not reference the handle.
type leak struct {
	log logr.Logger
	pcs []uintptr
}

func (h *Handle[T]) track(log logr.Logger) {
	pcs := make([]uintptr, leakDepth)
	// skip Callers, track, attach
	n := runtime.Callers(3, pcs)
	h.cleanup = runtime.AddCleanup(h, leak.report, leak{log: log, pcs: pcs[:n]})
	h.tracked = true
}

func (h *Handle[T]) untrack() {
	if h.tracked {
		h.cleanup.Stop()
		h.tracked = false
	}
}

func (l leak) report() {
	l.log.Error(nil, "handle became unreachable without Close", "stack", l.stack())
}

func (l leak) stack() string {
	var b strings.Builder
	frames := runtime.CallersFrames(l.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}
