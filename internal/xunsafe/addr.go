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

import (
	"fmt"
	"unsafe"
)

// Addr is a raw, untyped address. Unlike unsafe.Pointer, the garbage
// collector does not track values of this type, so holding one does not by
// itself keep anything alive.
type Addr uintptr

// AddrOf returns the address of the pointee of p.
func AddrOf[T any](p *T) Addr {
	return Addr(unsafe.Pointer(p))
}

// AssertValid reinterprets this address as a pointer to T.
//
// Callers are responsible for ensuring the referent is still alive and of
// the right shape; this function performs no checking whatsoever.
func AssertValid[T any](a Addr) *T {
	return (*T)(unsafe.Pointer(uintptr(a))) //nolint:govet // deliberate
}

// Add adds n bytes to a.
func (a Addr) Add(n int) Addr {
	return a + Addr(n)
}

// Sub returns a-b, in bytes.
func (a Addr) Sub(b Addr) int {
	return int(a - b)
}

// Misalign returns the byte distance to the previous, and the next,
// align-aligned address. align must be a power of two.
func (a Addr) Misalign(align int) (prev, next int) {
	addr := int(a)
	prev = addr & (align - 1)
	next = (align - addr) & (align - 1)
	return prev, next
}

// Format implements fmt.Formatter, printing addresses in hex.
func (a Addr) Format(s fmt.State, verb rune) {
	if verb == 'v' {
		fmt.Fprintf(s, "%#x", uintptr(a))
		return
	}
	fmt.Fprintf(s, fmt.FormatString(s, verb), uintptr(a))
}
