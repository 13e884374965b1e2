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

package xunsafe

import "unsafe"

// Cast reinterprets p as a pointer to To.
func Cast[To, From any](p *From) *To {
	return (*To)(unsafe.Pointer(p))
}

// BitCast reinterprets the bytes of v as a To. len(To) must equal len(From).
func BitCast[To, From any](v From) To {
	return *(*To)(unsafe.Pointer(&v))
}

// Bytes views p's referent as a byte slice.
func Bytes[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), Size[T]())
}

// SliceBytes views s's backing storage as a byte slice.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*Size[T]())
}

// DataPtr returns the address of s's backing array, or the zero address for
// a slice with zero capacity. A zero-length slice with spare capacity still
// yields its backing array's address.
func DataPtr[T any](s []T) Addr {
	if cap(s) == 0 {
		return 0
	}
	return AddrOf(&(s[:1:1])[0])
}

// NoEscape hides a pointer from escape analysis.
//
//go:nosplit
func NoEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0) //nolint:staticcheck
}
