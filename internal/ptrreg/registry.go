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

// Package ptrreg implements the pointer registry used by the Complete
// fixup policy: a record of every pointer word written into the arena, kept
// so that a final pass can repair them once the arena's backing array has
// settled at its final address.
package ptrreg

import "github.com/overlookmotel/rawser/internal/xunsafe"

// group is a set of in-arena offsets identifying pointer words, all written
// while the arena's backing array lived at baseAtWrite.
type group struct {
	baseAtWrite xunsafe.Addr
	offsets     []int
}

// Registry is the two-level record described by the distilled spec: a
// "current" group, plus a set of retired ("past") groups.
type Registry struct {
	current group
	past    []group
}

// Record appends offset — the in-arena position of a pointer word that was
// just written — to the current group, first retiring it if the arena's
// base address has moved since the group was opened.
//
// currentBase is the arena's base address right now, as observed by the
// caller immediately before this call.
func (r *Registry) Record(currentBase xunsafe.Addr, offset int) {
	r.sync(currentBase)
	r.current.offsets = append(r.current.offsets, offset)
}

// sync retires the current group if the arena has moved since it was
// opened and it is non-empty; otherwise it just updates the group's base in
// place, avoiding proliferation of empty groups for every no-op growth
// check.
func (r *Registry) sync(currentBase xunsafe.Addr) {
	if r.current.baseAtWrite == 0 && len(r.current.offsets) == 0 {
		r.current.baseAtWrite = currentBase
		return
	}
	if r.current.baseAtWrite == currentBase {
		return
	}
	if len(r.current.offsets) == 0 {
		r.current.baseAtWrite = currentBase
		return
	}
	r.past = append(r.past, r.current)
	r.current = group{baseAtWrite: currentBase}
}

// Finalize applies, to each recorded pointer word, the shift between the
// arena base it was written against and finalBase, via writeWord. writeWord
// is given the absolute in-arena byte offset and the amount to add (modular,
// wrapping uintptr arithmetic, matching the original's pointer-width
// wraparound semantics).
func (r *Registry) Finalize(finalBase xunsafe.Addr, writeWord func(offset int, shift xunsafe.Addr)) {
	for _, g := range r.past {
		if len(g.offsets) == 0 {
			continue
		}
		shift := finalBase - g.baseAtWrite
		for _, off := range g.offsets {
			writeWord(off, shift)
		}
	}
	if g := r.current; len(g.offsets) > 0 {
		shift := finalBase - g.baseAtWrite
		for _, off := range g.offsets {
			writeWord(off, shift)
		}
	}
}

// Len returns the total number of pointer words recorded across all groups,
// retired and current. Exposed for tests.
func (r *Registry) Len() int {
	n := len(r.current.offsets)
	for _, g := range r.past {
		n += len(g.offsets)
	}
	return n
}
