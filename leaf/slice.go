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

package leaf

import (
	"unsafe"

	"github.com/overlookmotel/rawser"
	"github.com/overlookmotel/rawser/internal/probe"
	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// OwnedSlice is the rendition of the distilled spec's Vec<T>: a header that
// exclusively owns a contiguous backing array. Its header layout is
// whatever the host Go runtime's slice header actually is — discovered once
// per T by package probe rather than assumed — so this type is declared
// with a plain Go slice as its only field and never hard-codes an offset.
type OwnedSlice[T any] struct {
	s []T
}

// NewOwnedSlice wraps an existing slice. Ownership of the backing array
// transfers to the OwnedSlice.
func NewOwnedSlice[T any](s []T) OwnedSlice[T] { return OwnedSlice[T]{s: s} }

// Slice returns the underlying Go slice.
func (o OwnedSlice[T]) Slice() []T { return o.s }

// Len returns the slice's length.
func (o OwnedSlice[T]) Len() int { return len(o.s) }

// WalkOwnedSlice implements the OwnedSlice<T> leaf's walk (§4.5): if the
// slice is non-empty and T is non-zero-sized, it pushes the whole backing
// array in one copy, writes the edge pointer at the header's probed
// data-pointer offset, and recurses into every element's Walk. Regardless
// of length, if the output header's capacity word differs from the slice's
// length, it is rewritten to match — an empty slice with spare capacity
// still has its capacity word zeroed, matching a from-scratch empty owned
// slice, per the shrink-to-fit requirement.
//
// o must be the address of the OwnedSlice field as it exists inside the
// struct currently being walked — i.e. called as
// leaf.WalkOwnedSlice(s, &parent.Field).
func WalkOwnedSlice[T any, PT rawser.Walkable[T]](s *rawser.Serializer, o *OwnedSlice[T]) {
	hdr := probe.SliceHeader[T]()
	headerAddr := xunsafe.AddrOf(o)

	if len(o.s) > 0 {
		srcAddr := headerAddr.Add(hdr.PtrOffset)
		rawser.PushAndProcessSlice(s, o.s, srcAddr, func(s *rawser.Serializer) {
			for i := range o.s {
				PT(&o.s[i]).Walk(s)
			}
		})
	}

	if hdr.CapOffset >= 0 && cap(o.s) != len(o.s) {
		headerPos := s.PosFor(headerAddr)
		word := make([]byte, xunsafe.Size[uintptr]())
		putUintptr(word, uintptr(len(o.s)))
		s.Arena().WriteAt(headerPos+hdr.CapOffset, word)
	}
}

func putUintptr(b []byte, v uintptr) {
	*(*uintptr)(unsafe.Pointer(&b[0])) = v
}
