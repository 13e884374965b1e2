// Copyright 2020-2026 The Rawser Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build debug

// Package xdebug provides debugging helpers that only exist in builds
// tagged "debug" — the release build (debug.go's sibling, release.go)
// replaces everything here with zero-cost no-ops.
package xdebug

import (
	"fmt"
	"os"

	"github.com/timandy/routine"
)

// Enabled is true in a debug build.
const Enabled = true

// Log prints a debug trace line to stderr, tagged with the calling
// goroutine's id so interleaved traces from concurrent Serializers (see
// package batch) stay attributable to the right one.
func Log(operation, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "rawser[g%04d] %s: %s\n", routine.Goid(), operation, msg)
}

// Assert panics if cond is false. Only checked in debug builds — callers
// must not rely on Assert for anything load-bearing in a release build.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("rawser: internal assertion failed: "+format, args...))
	}
}
