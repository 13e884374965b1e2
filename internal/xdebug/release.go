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

//go:build !debug

package xdebug

// Enabled is false outside a debug build.
const Enabled = false

// Log is a no-op outside a debug build; the compiler eliminates both the
// call and its argument evaluation's side effects, since format/args are
// plain interface conversions with no observable effect here.
func Log(operation, format string, args ...any) {}

// Assert is a no-op outside a debug build.
func Assert(cond bool, format string, args ...any) {}
