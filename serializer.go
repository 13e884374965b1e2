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
	"fmt"

	"github.com/overlookmotel/rawser/internal/arena"
	"github.com/overlookmotel/rawser/internal/posmap"
	"github.com/overlookmotel/rawser/internal/xdebug"
	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// Serializer is the walker of §4.2: it drives a value graph through one of
// the four Policy implementations, copying leaves into its Arena and opening
// a new allocation at every owned-pointer edge.
//
// A Serializer is single-use and not safe for concurrent use by multiple
// goroutines; distinct Serializer instances are fully independent and may be
// driven concurrently (see package batch).
type Serializer struct {
	arena  *arena.Arena
	pos    posmap.Map
	policy Policy
}

func alignmentError(align, max int) error {
	return fmt.Errorf("rawser: value alignment %d exceeds MaxValueAlign %d", align, max)
}

func alignOf[T any]() int { return xunsafe.Align[T]() }
func sizeOf[T any]() int  { return xunsafe.Size[T]() }

// New creates a Serializer using policy and the given parameters.
func New(policy Policy, p Params) (*Serializer, error) {
	a, err := arena.New(p)
	if err != nil {
		return nil, err
	}
	return &Serializer{arena: a, policy: policy}, nil
}

// NewWithCapacity is like New, but pre-reserves n bytes.
func NewWithCapacity(policy Policy, p Params, n int) (*Serializer, error) {
	a, err := arena.NewWithCapacity(p, n)
	if err != nil {
		return nil, err
	}
	return &Serializer{arena: a, policy: policy}, nil
}

// Arena returns the serializer's backing arena, mainly for inspection in
// tests and tools; callers should prefer Finalize/IntoStorage for the
// normal end-of-serialization path.
func (s *Serializer) Arena() *arena.Arena { return s.arena }

// PosFor returns the output position corresponding to addr, which must lie
// within the allocation currently being walked.
func (s *Serializer) PosFor(addr xunsafe.Addr) int { return s.pos.PosFor(addr) }

// SerializeValue is the top-level entry point (§4.2): it appends root's
// byte image at a properly aligned offset, installs the position mapping
// covering that copy, and invokes root's Walk method. Returns the output
// offset of the root (always 0 for a Serializer that has pushed nothing
// else yet).
func SerializeValue[T any, PT Walkable[T]](s *Serializer, root *T) int {
	align, size := alignOf[T](), sizeOf[T]()
	if align > s.arena.Params().MaxValueAlign {
		panic(alignmentError(align, s.arena.Params().MaxValueAlign))
	}

	pos := s.arena.ReserveAligned(size, align)
	s.pos = posmap.Map{InputAddr: xunsafe.AddrOf(root), OutputPos: pos}

	s.arena.Advance(size)
	if size > 0 {
		s.arena.WriteAt(pos, xunsafe.Bytes(root))
	}

	xdebug.Log("serialize_value", "root at %d, size=%d align=%d", pos, size, align)

	PT(root).Walk(s)
	return pos
}

// PushAndProcess handles an owned-pointer edge to a single-value allocation
// (a leaf.Box[T]'s pointee): it aligns for T, writes the pointer overwrite
// if the policy wants one, installs a new position mapping covering the
// pointee, copies the pointee's bytes, invokes process (which runs the
// pointee's Walk), then restores the previous mapping.
//
// srcAddr is the address of the pointer field inside the source allocation,
// as required by §4.2; it is only consulted by policies that overwrite
// pointer words. process is responsible for invoking the pointee's own
// Walk, if it has one; this function only moves bytes and mapping state,
// so it does not itself require T to satisfy Walkable.
func PushAndProcess[T any](s *Serializer, pointee *T, srcAddr xunsafe.Addr, process func(*Serializer)) {
	align, size := alignOf[T](), sizeOf[T]()
	if align > s.arena.Params().MaxValueAlign {
		panic(alignmentError(align, s.arena.Params().MaxValueAlign))
	}
	if size == 0 {
		return
	}

	pointeePos := s.arena.ReserveAligned(size, align)

	if s.policy.tracksAddr() {
		ptrPos := s.pos.PosFor(srcAddr)
		s.policy.onEdge(s.arena, ptrPos, pointeePos, s.arena.BaseAddr())
	}

	saved := s.pos
	s.pos = posmap.Map{InputAddr: xunsafe.AddrOf(pointee), OutputPos: pointeePos}

	s.arena.Advance(size)
	s.arena.WriteAt(pointeePos, xunsafe.Bytes(pointee))

	process(s)

	s.pos = saved
}

// PushAndProcessSlice handles an owned-pointer edge to a slice allocation (a
// leaf.OwnedSlice[T]'s backing array): analogous to PushAndProcess, but for
// n contiguous elements. process is invoked once, with the new mapping
// installed, and is expected to iterate every element invoking its Walk.
// Returns the output position the backing array was written at, so a caller
// that must rewrite a header word past the copy (e.g. a capacity field) can
// address it without a further lookup; returns -1 if nothing was written
// (T zero-sized, or elems empty). process is responsible for invoking each
// element's own Walk, if it has one.
func PushAndProcessSlice[T any](s *Serializer, elems []T, srcAddr xunsafe.Addr, process func(*Serializer)) int {
	align := alignOf[T]()
	if align > s.arena.Params().MaxValueAlign {
		panic(alignmentError(align, s.arena.Params().MaxValueAlign))
	}
	size := sizeOf[T]()
	if size == 0 || len(elems) == 0 {
		return -1
	}
	total := size * len(elems)

	pos := s.arena.ReserveAligned(total, align)

	if s.policy.tracksAddr() {
		ptrPos := s.pos.PosFor(srcAddr)
		s.policy.onEdge(s.arena, ptrPos, pos, s.arena.BaseAddr())
	}

	saved := s.pos
	s.pos = posmap.Map{InputAddr: xunsafe.DataPtr(elems), OutputPos: pos}

	s.arena.Advance(total)
	s.arena.WriteAt(pos, xunsafe.SliceBytes(elems))

	process(s)

	s.pos = saved
	return pos
}

// PushSliceNoProcess handles an owned-pointer edge to a slice of leaves that
// have no further Walk of their own — an owned string's byte data, or a
// slice of primitives. Only the pointer overwrite and the byte copy happen;
// no mapping is installed, since nothing will ever look it up.
func PushSliceNoProcess[T any](s *Serializer, elems []T, srcAddr xunsafe.Addr) {
	align := alignOf[T]()
	if align > s.arena.Params().MaxValueAlign {
		panic(alignmentError(align, s.arena.Params().MaxValueAlign))
	}
	size := sizeOf[T]()
	if size == 0 || len(elems) == 0 {
		return
	}
	total := size * len(elems)

	pos := s.arena.ReserveAligned(total, align)

	if s.policy.tracksAddr() {
		ptrPos := s.pos.PosFor(srcAddr)
		s.policy.onEdge(s.arena, ptrPos, pos, s.arena.BaseAddr())
	}

	s.arena.Advance(total)
	s.arena.WriteAt(pos, xunsafe.SliceBytes(elems))
}

// PushBytes appends raw bytes with no pointer semantics, for custom leaves
// that need to emit something the generic helpers above don't cover. Returns
// the output position the bytes were written at.
func PushBytes(s *Serializer, b []byte) int {
	return s.arena.PushBytes(b, s.arena.Params().ValueAlign)
}

// Finalize runs the policy's deferred fixup (a no-op except for Complete)
// and returns the backing arena. After this call the Serializer must not be
// used again.
func (s *Serializer) Finalize() *arena.Arena {
	s.policy.finalize(s.arena)
	return s.arena
}

// IntoStorage extracts the raw output bytes without running fixup, for
// tests that want to inspect the pre-fixup byte image (§6.3).
func (s *Serializer) IntoStorage() []byte {
	return s.arena.Data()
}
