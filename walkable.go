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

// Walker is the walk-method contract of §6.4: a Walk method that invokes
// the Serializer exactly once per owned-pointer edge reachable from the
// receiver, in declaration order, and recurses into each nested-by-value
// field's own Walk when that field has one.
//
// Plain structs built only of primitives have nothing to recurse into —
// their bytes are already correct once copied by value — so their Walk is a
// no-op, obtained by embedding Leaf. Every type passed as a root to
// SerializeValue, or used as the pointee of a leaf.Box, the element of a
// leaf.OwnedSlice, or the value of a leaf.Option, must still satisfy
// Walkable, whether or not it contains further owned-pointer edges.
//
// In a repository with code generation, an implementation of this method
// would be emitted by a derive facility from a struct's field list; here it
// is hand-written, playing the derive facility's role under the same
// contract. Because recursing into a struct's owned-pointer fields needs
// the struct's real address (§4.2), not a copy, Walk is written with a
// pointer receiver wherever the receiver has fields of its own to recurse
// into.
type Walker interface {
	Walk(s *Serializer)
}

// Walkable constrains a type parameter T such that *T implements Walker —
// the standard idiom for generic code that must call a pointer-receiver
// method on a type parameter while still storing and passing T by value
// everywhere else. A leaf.Box[T] holds a *T, never this second type
// parameter; Go's constraint type inference derives it automatically from
// T at every call site, so it never appears at a leaf.Box or
// leaf.OwnedSlice use site.
type Walkable[T any] interface {
	*T
	Walker
}

// Leaf marks a type as having no owned-pointer edges: primitives and plain
// value structs embed Leaf to satisfy Walker with a no-op, so that generic
// leaf containers (leaf.Box[T], leaf.OwnedSlice[T]) can be instantiated
// over them without a hand-written Walk method. Leaf's Walk has a value
// receiver, so it promotes into both T's and *T's method sets, and an
// embedding type satisfies Walkable[T] without needing a pointer receiver
// of its own.
type Leaf struct{}

// Walk implements Walker as a no-op.
func (Leaf) Walk(*Serializer) {}
