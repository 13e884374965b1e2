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

package rawser

import (
	"unsafe"

	"github.com/overlookmotel/rawser/internal/arena"
	"github.com/overlookmotel/rawser/internal/ptrreg"
	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// putWord and getWord write/read a native machine word (uintptr-sized) to a
// byte slice at its natural alignment. The output format is explicitly
// host-endian and host-pointer-width (§6.1 Non-goals), so this uses a direct
// unsafe cast rather than encoding/binary: there is no portability to
// preserve.
func putWord(b []byte, v uintptr) {
	*(*uintptr)(unsafe.Pointer(&b[0])) = v
}

func getWord(b []byte) uintptr {
	return *(*uintptr)(unsafe.Pointer(&b[0]))
}

// Policy is the small capability trait the distilled spec's Design Notes
// call for: a Serializer is built around exactly one Policy, fixed for its
// lifetime, that decides what happens at a pointer edge and at finalization.
// The four implementations in this package (PureCopy, PosTracking, RelPtr,
// Complete) are the distilled spec's four modes; Go generics cannot erase
// the mode the way the original's const-generic specialization did, but the
// dispatch is still a single virtual call per edge, not a mode switch.
type Policy interface {
	// tracksAddr reports whether the walker must compute real source
	// addresses and call onEdge. PureCopy and PosTracking do not, so the
	// walker skips that work entirely for them.
	tracksAddr() bool

	// onEdge is invoked, only for policies whose tracksAddr reports true,
	// right before a pointee is copied: ptrPos is the output position of the
	// pointer word inside the already-copied parent, and pointeePos is the
	// output position the pointee is about to occupy.
	// arenaBase is the arena's base address at this exact moment.
	onEdge(a *arena.Arena, ptrPos, pointeePos int, arenaBase xunsafe.Addr)

	// finalize performs any deferred fixup. Called exactly once, by
	// Serializer.Finalize.
	finalize(a *arena.Arena)
}

// PureCopy is fixup policy (A): pointer words are left holding source
// addresses; the output is a byte image only, not a valid in-memory
// representation. Useful as a performance ceiling baseline.
type PureCopy struct{}

func (PureCopy) tracksAddr() bool { return false }
func (PureCopy) onEdge(*arena.Arena, int, int, xunsafe.Addr) {}
func (PureCopy) finalize(*arena.Arena) {}

// PosTracking is fixup policy (B): identical to PureCopy, except the
// Serializer's position map is kept valid throughout (it always is,
// internally — this policy exists to document that downstream code is
// allowed to rely on Serializer.PosFor while using it, unlike PureCopy).
type PosTracking struct{}

func (PosTracking) tracksAddr() bool { return false }
func (PosTracking) onEdge(*arena.Arena, int, int, xunsafe.Addr) {}
func (PosTracking) finalize(*arena.Arena) {}

// RelPtr is fixup policy (C): pointer words are overwritten with the signed
// byte offset from the word itself to the pointee, so the output is
// position-independent — it can be relocated to any address and remains
// valid, provided readers compute target = addressOf(word) + offset.
type RelPtr struct{}

func (RelPtr) tracksAddr() bool { return true }

func (RelPtr) onEdge(a *arena.Arena, ptrPos, pointeePos int, _ xunsafe.Addr) {
	offset := uintptr(pointeePos - ptrPos) // reinterpreted as signed by readers
	buf := make([]byte, xunsafe.Size[uintptr]())
	putWord(buf, offset)
	a.WriteAt(ptrPos, buf)
}

func (RelPtr) finalize(*arena.Arena) {}

// Complete is fixup policy (D): pointer words are written as absolute
// addresses valid at the moment of the write, and every write is recorded in
// a ptrreg.Registry; Finalize applies, to each recorded word, the shift
// between the arena's base address when it was written and the arena's
// final base address, leaving every interior pointer holding the correct
// final absolute address.
type Complete struct {
	reg ptrreg.Registry
}

func (c *Complete) tracksAddr() bool { return true }

func (c *Complete) onEdge(a *arena.Arena, ptrPos, pointeePos int, arenaBase xunsafe.Addr) {
	absolute := arenaBase.Add(pointeePos)
	buf := make([]byte, xunsafe.Size[uintptr]())
	putWord(buf, uintptr(absolute))
	a.WriteAt(ptrPos, buf)
	c.reg.Record(arenaBase, ptrPos)
}

func (c *Complete) finalize(a *arena.Arena) {
	finalBase := a.BaseAddr()
	wordSize := xunsafe.Size[uintptr]()
	c.reg.Finalize(finalBase, func(offset int, shift xunsafe.Addr) {
		word := getWord(a.ReadAt(offset, wordSize))
		putWord(a.ReadAt(offset, wordSize), uintptr(xunsafe.Addr(word)+shift))
	})
}
