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

// Package rawser is a zero-copy in-memory serializer: it copies a Go value
// graph byte-for-byte into one linear buffer such that, once finalized, the
// buffer is itself a valid in-memory representation of the root value. A
// consumer may cast the buffer's base address to a pointer of the root type
// and read fields, and follow interior pointers, without any decoding pass.
//
// The typical use is producing precomputed data blobs — caches, asset
// bundles, IPC payloads — that are later memory-mapped, or handed to an
// untrusted reader, for O(1) access. See package blobstore for the
// memory-mapping half of that story.
//
// Output is not portable across processes with differing pointer width,
// endianness, or struct layout; there is no deserialization pass, only a
// cast; and the input's ownership graph must be a DAG — cycles are a
// precondition violation, not a detected error.
package rawser

import "github.com/overlookmotel/rawser/internal/arena"

// Params is the parameter envelope of §6.2: the alignment and capacity
// constants a Serializer's arena is built with. The zero value is invalid;
// use DefaultParams or construct one and call Validate.
type Params = arena.Params

// DefaultParams is a sensible envelope for 64-bit hosts.
var DefaultParams = arena.DefaultParams

// Check panics if T's alignment exceeds p.MaxValueAlign, the same condition
// the distilled spec requires be a compile-time error. Go cannot reject this
// before any bytes are written without walking the whole type graph up
// front, which this helper does for a single type as an optional pre-flight;
// the Serializer itself also performs this check lazily, the first time a
// value of a given alignment is pushed.
func Check[T any](p Params) {
	align := alignOf[T]()
	if align > p.MaxValueAlign {
		panic(alignmentError(align, p.MaxValueAlign))
	}
}
