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

// Package leaf provides the container leaf contracts of §4.5: the owned
// pointer types (Box, OwnedSlice, OwnedString) and Option, plus the helper
// functions a hand-written struct Walk method calls to recurse into them.
//
// Each Walk* helper here plays the role the distilled spec assigns to a
// container's own Walk method; they are free functions, not methods on the
// container types, because they need the address of the field as it sits
// inside the parent (the source address §4.2 requires), which only the
// caller — the struct holding the field — actually has.
package leaf

import (
	"github.com/overlookmotel/rawser"
	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// Box is an owned pointer to a single heap-allocated T — the rendition of
// the distilled spec's Box<T>: one pointer-wide field that exclusively owns
// its pointee. The zero Box is empty, matching a nil pointer. T is
// unconstrained here; WalkBox is where a Walkable[T] bound is actually
// needed, and Go's constraint type inference supplies it there without
// ever naming a second type parameter at a Box use site.
type Box[T any] struct {
	ptr *T
}

// NewBox heap-allocates a copy of v and wraps it.
func NewBox[T any](v T) Box[T] {
	p := new(T)
	*p = v
	return Box[T]{ptr: p}
}

// BoxOf wraps an existing pointer. Ownership of *p transfers to the Box: the
// input graph's no-shared-ownership invariant (§1) means the caller must not
// keep another owning reference to it.
func BoxOf[T any](p *T) Box[T] { return Box[T]{ptr: p} }

// Get returns the boxed value's pointer, or nil if the Box is empty.
func (b Box[T]) Get() *T { return b.ptr }

// IsNil reports whether the Box holds no value.
func (b Box[T]) IsNil() bool { return b.ptr == nil }

// WalkBox implements the Box<T> leaf's walk (§4.5): if b is empty, or T is
// zero-sized, it does nothing. Otherwise it pushes the pointee's bytes,
// writes the edge pointer (in policies that track one), and recurses into
// the pointee's own Walk.
//
// b must be the address of the Box field as it exists inside the struct
// currently being walked — i.e. called as leaf.WalkBox(s, &parent.Field).
func WalkBox[T any, PT rawser.Walkable[T]](s *rawser.Serializer, b *Box[T]) {
	if b.ptr == nil {
		return
	}
	srcAddr := xunsafe.AddrOf(b) // the Box's only field is the pointer itself, at offset 0.
	rawser.PushAndProcess(s, b.ptr, srcAddr, func(s *rawser.Serializer) {
		PT(b.ptr).Walk(s)
	})
}
