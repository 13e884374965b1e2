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

// Package xunsafe provides a more convenient interface for performing unsafe
// operations than Go's built-in package unsafe.
package xunsafe

import "unsafe"

// Layout is the size and alignment of some type.
type Layout struct {
	Size, Align int
}

// Of returns the size and alignment of T.
func Of[T any]() Layout {
	var z T
	return Layout{int(unsafe.Sizeof(z)), int(unsafe.Alignof(z))}
}

// Size returns T's size in bytes.
func Size[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Align returns T's alignment in bytes.
func Align[T any]() int {
	var z T
	return int(unsafe.Alignof(z))
}

// Max returns a layout whose size and alignment are both as large as the
// largest among l and that.
func (l Layout) Max(that Layout) Layout {
	return Layout{max(l.Size, that.Size), max(l.Align, that.Align)}
}

// IsPow2 reports whether n is a power of two. Zero is not a power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// RoundUp rounds p up to the next multiple of align, which must be a power
// of two.
func RoundUp(p, align int) int {
	return (p + align - 1) &^ (align - 1)
}

// NextPow2 returns the smallest power of two that is >= n.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	k := 1
	for k < n {
		k <<= 1
	}
	return k
}
