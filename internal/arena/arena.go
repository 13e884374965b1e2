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

// Package arena implements the aligned, append-only byte arena that backs
// the serializer's output buffer.
//
// Unlike a general-purpose allocator, an Arena never frees the individual
// values placed in it: it only grows, by powers of two, until the caller is
// done and calls ShrinkToFit (or abandons it, at which point the garbage
// collector reclaims the whole backing array in one shot).
package arena

import (
	"fmt"

	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// Params bundles the compile-time constants of the distilled spec as
// run-time-checked values, since Go generics have no way to constrain
// integer constants the way the original's const generics did.
type Params struct {
	// StorageAlign is the alignment of the buffer's starting address.
	StorageAlign int
	// MaxValueAlign is the largest alignment any value placed in the arena
	// may require.
	MaxValueAlign int
	// ValueAlign is the alignment the write cursor is restored to after
	// every append.
	ValueAlign int
	// MaxCapacity is the hard upper bound on the arena's size, in bytes.
	MaxCapacity int
}

// DefaultParams is a sensible envelope for 64-bit hosts: pointer-aligned
// storage and values, capped at 1<<32 bytes.
var DefaultParams = Params{
	StorageAlign:  8,
	MaxValueAlign: 8,
	ValueAlign:    8,
	MaxCapacity:   1 << 32,
}

// Validate checks the invariants the distilled spec places on the four
// parameters, returning a descriptive error for the first one violated.
func (p Params) Validate() error {
	switch {
	case !xunsafe.IsPow2(p.StorageAlign):
		return fmt.Errorf("arena: StorageAlign %d is not a power of two", p.StorageAlign)
	case !xunsafe.IsPow2(p.MaxValueAlign):
		return fmt.Errorf("arena: MaxValueAlign %d is not a power of two", p.MaxValueAlign)
	case !xunsafe.IsPow2(p.ValueAlign):
		return fmt.Errorf("arena: ValueAlign %d is not a power of two", p.ValueAlign)
	case p.MaxValueAlign > p.StorageAlign:
		return fmt.Errorf("arena: MaxValueAlign %d exceeds StorageAlign %d", p.MaxValueAlign, p.StorageAlign)
	case p.ValueAlign > p.MaxValueAlign:
		return fmt.Errorf("arena: ValueAlign %d exceeds MaxValueAlign %d", p.ValueAlign, p.MaxValueAlign)
	case p.MaxCapacity <= 0:
		return fmt.Errorf("arena: MaxCapacity %d must be positive", p.MaxCapacity)
	case p.MaxCapacity%p.MaxValueAlign != 0:
		return fmt.Errorf("arena: MaxCapacity %d is not a multiple of MaxValueAlign %d", p.MaxCapacity, p.MaxValueAlign)
	case p.MaxCapacity > int(^uint(0)>>1)-p.StorageAlign+1:
		return fmt.Errorf("arena: MaxCapacity %d exceeds math.MaxInt + 1 - StorageAlign", p.MaxCapacity)
	}
	return nil
}

// Arena is a contiguous, growable, aligned byte buffer.
//
// A zero Arena is not ready to use; construct one with New or NewWithCapacity.
type Arena struct {
	params Params
	buf    []byte // len(buf) == cursor; cap(buf) == capacity, always a multiple of MaxValueAlign (or 0).
}

// New creates an empty arena with the given parameters.
func New(p Params) (*Arena, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Arena{params: p}, nil
}

// NewWithCapacity creates an arena with at least n bytes pre-reserved,
// rounded up to a multiple of MaxValueAlign.
func NewWithCapacity(p Params, n int) (*Arena, error) {
	a, err := New(p)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		a.Reserve(n)
	}
	return a, nil
}

// Params returns the arena's configured parameters.
func (a *Arena) Params() Params { return a.params }

// Len returns the number of bytes written so far (the cursor position).
func (a *Arena) Len() int { return len(a.buf) }

// Cap returns the arena's current capacity.
func (a *Arena) Cap() int { return cap(a.buf) }

// Data returns the arena's backing storage as a byte slice of length Len().
//
// The returned slice aliases the arena's storage; it is invalidated by any
// subsequent append that triggers growth.
func (a *Arena) Data() []byte { return a.buf }

// BaseAddr returns the address of the arena's backing array's first byte, or
// zero if nothing has been reserved yet.
func (a *Arena) BaseAddr() xunsafe.Addr {
	if cap(a.buf) == 0 {
		return 0
	}
	return xunsafe.DataPtr(a.buf[:1:1])
}

// Reserve ensures at least extra more bytes can be appended without growing
// again, growing the arena now if necessary.
func (a *Arena) Reserve(extra int) {
	if cap(a.buf)-len(a.buf) >= extra {
		return
	}
	a.grow(extra)
}

// grow implements the distilled spec's growth algorithm: round up to the
// next power of two, never below MaxValueAlign, capped at MaxCapacity.
func (a *Arena) grow(extra int) {
	need := len(a.buf) + extra
	if need > a.params.MaxCapacity {
		panic(fmt.Errorf("rawser: arena: requested %d bytes exceeds MaxCapacity %d", need, a.params.MaxCapacity))
	}

	newCap := max(a.params.MaxValueAlign, xunsafe.NextPow2(need))
	if newCap > a.params.MaxCapacity {
		newCap = a.params.MaxCapacity
	}
	if newCap < need {
		panic(fmt.Errorf("rawser: arena: MaxCapacity %d is insufficient for %d bytes", a.params.MaxCapacity, need))
	}

	next := make([]byte, len(a.buf), newCap)
	copy(next, a.buf)
	a.buf = next
}

// alignFor advances the cursor to the next multiple of align, growing
// capacity if necessary. A no-op if align <= ValueAlign (the cursor is
// already aligned to at least that after every prior append).
func (a *Arena) alignFor(align int) {
	if align <= a.params.ValueAlign {
		return
	}
	_, pad := xunsafe.Addr(len(a.buf)).Misalign(align)
	if pad == 0 {
		return
	}
	a.Reserve(pad)
	a.buf = a.buf[:len(a.buf)+pad]
}

// alignAfter advances the cursor to the next multiple of ValueAlign if size
// isn't already a multiple of it. Never grows capacity: the invariant that
// capacity is always a multiple of MaxValueAlign makes this safe, since
// MaxValueAlign is itself a multiple of ValueAlign's alignment class.
func (a *Arena) alignAfter(size int) {
	if size%a.params.ValueAlign == 0 {
		return
	}
	_, pad := xunsafe.Addr(len(a.buf)).Misalign(a.params.ValueAlign)
	a.buf = a.buf[:len(a.buf)+pad]
}

// checkValueAlign panics if align exceeds MaxValueAlign: the distilled
// spec's compile-time error "type whose alignment exceeds MaxValueAlign" has
// no compile-time equivalent for a run-time-configured Params, so it is
// raised as early as possible instead, the first time such a value is
// pushed.
func (a *Arena) checkValueAlign(align int) {
	if align > a.params.MaxValueAlign {
		panic(fmt.Errorf("rawser: value alignment %d exceeds MaxValueAlign %d", align, a.params.MaxValueAlign))
	}
}

// PushBytes appends raw bytes at the cursor, aligned for align, and
// re-aligns the cursor to ValueAlign afterward. Returns the output position
// the bytes were written at.
func (a *Arena) PushBytes(b []byte, align int) int {
	a.checkValueAlign(align)
	if len(b) == 0 {
		a.alignFor(align)
		pos := len(a.buf)
		a.alignAfter(0)
		return pos
	}
	a.alignFor(align)
	pos := len(a.buf)
	a.Reserve(len(b))
	a.buf = append(a.buf, b...)
	a.alignAfter(len(b))
	return pos
}

// ReserveAligned aligns the cursor for align and reserves n more bytes
// without writing anything, returning the (future) position the next write
// will land at. Used by the walker to compute a pointee's output position
// before the pointee's bytes are actually copied (the fixup protocol depends
// on knowing this position before the write happens).
func (a *Arena) ReserveAligned(n, align int) int {
	a.checkValueAlign(align)
	a.alignFor(align)
	a.Reserve(n)
	return len(a.buf)
}

// Advance grows the cursor by n bytes without writing anything (the bytes
// are assumed to already be present via Reserve, or are about to be filled
// in directly by the caller via WriteAt). Re-aligns to ValueAlign afterward.
func (a *Arena) Advance(n int) {
	a.buf = a.buf[:len(a.buf)+n]
	a.alignAfter(n)
}

// WriteAt overwrites len(b) bytes at pos, which must satisfy
// pos+len(b) <= Len().
func (a *Arena) WriteAt(pos int, b []byte) {
	if pos+len(b) > len(a.buf) {
		panic(fmt.Errorf("rawser: arena: WriteAt(%d, len=%d) out of bounds (len=%d)", pos, len(b), len(a.buf)))
	}
	copy(a.buf[pos:], b)
}

// ReadAt returns a view of n bytes at pos. The view aliases the arena.
func (a *Arena) ReadAt(pos, n int) []byte {
	return a.buf[pos : pos+n]
}

// SetLen truncates or extends the logical length of the arena to n, which
// must not exceed Cap(). Extending does not zero the new bytes.
func (a *Arena) SetLen(n int) {
	if n > cap(a.buf) {
		panic(fmt.Errorf("rawser: arena: SetLen(%d) exceeds capacity %d", n, cap(a.buf)))
	}
	a.buf = a.buf[:n]
}

// ShrinkToFit reallocates the backing array to exactly Len() bytes (rounded
// up to MaxValueAlign), releasing any spare capacity.
func (a *Arena) ShrinkToFit() {
	target := xunsafe.RoundUp(len(a.buf), a.params.MaxValueAlign)
	if target == cap(a.buf) {
		return
	}
	next := make([]byte, len(a.buf), target)
	copy(next, a.buf)
	a.buf = next
}

// Reset empties the arena, retaining its backing array for reuse. Any
// offsets or pointers derived from a previous use are invalidated.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}
