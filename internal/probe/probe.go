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

// Package probe discovers the in-memory layout of the host runtime's slice
// and string headers by construction rather than by hard-coding field
// offsets, and memoizes the result per element type.
//
// This mirrors the Design Notes of the serializer this package serves: the
// walker depends on owned-slice and owned-string headers having their data
// pointer, length, and (for slices) capacity words at fixed offsets. That
// layout is not guaranteed by the Go language specification — only
// informally documented by the deprecated reflect.SliceHeader/StringHeader
// shapes. Probing once per element type at first use, then memoizing, means
// this package adapts itself rather than silently miscompiling if that
// layout ever changes.
package probe

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// Header is the layout-agnostic view the probe discovers: the byte offsets,
// within a header of Size bytes, at which the data pointer, length, and (for
// slices) capacity words live. CapOffset is -1 for string headers, which
// have no capacity field.
type Header struct {
	PtrOffset, LenOffset, CapOffset int
	Size, Align                     int
}

var (
	sliceMu    sync.Mutex
	sliceCache = map[reflect.Type]Header{}

	stringOnce   sync.Once
	stringHeader Header
)

// SliceHeader returns the probed layout of a slice-of-T header, memoized on
// first use for T.
func SliceHeader[T any]() Header {
	key := reflect.TypeFor[[]T]()

	sliceMu.Lock()
	defer sliceMu.Unlock()
	if h, ok := sliceCache[key]; ok {
		return h
	}

	h := discoverSliceHeader[T]()
	sliceCache[key] = h
	return h
}

// wordSize is the width of one header word: a pointer, or a platform int.
func wordSize() int { return xunsafe.Size[uintptr]() }

// conventionalSliceOffsets is the layout every released Go runtime has used
// to date: (Data, Len, Cap), in that order.
func conventionalSliceOffsets() (ptr, len_, cap_ int) {
	w := wordSize()
	return 0, w, 2 * w
}

// discoverSliceHeader finds the data-pointer, length, and capacity offsets
// by building a slice whose three header words are mutually distinguishable
// (a live data pointer, plus a nonzero length and capacity that differ from
// each other), then scanning the header's words for each. Falls back to the
// conventional layout for any word a scan can't uniquely place — e.g.
// because T is zero-sized and the data pointer collapses to a shared
// sentinel that collides with one of the probe integers.
func discoverSliceHeader[T any]() Header {
	size, align := xunsafe.Size[[]T](), xunsafe.Align[[]T]()
	fallbackPtr, fallbackLen, fallbackCap := conventionalSliceOffsets()

	const probeLen, probeCap = 3, 5
	sample := make([]T, probeLen, probeCap)
	wantPtr := uintptr(xunsafe.DataPtr(sample))

	base := unsafe.Pointer(&sample)
	ptrOff, ptrOK := scanForWord(base, size, wantPtr)
	lenOff, lenOK := scanForWord(base, size, uintptr(probeLen))
	capOff, capOK := scanForWord(base, size, uintptr(probeCap))

	if !ptrOK || !lenOK || !capOK || ptrOff == lenOff || ptrOff == capOff || lenOff == capOff {
		ptrOff, lenOff, capOff = fallbackPtr, fallbackLen, fallbackCap
	}

	return Header{PtrOffset: ptrOff, LenOffset: lenOff, CapOffset: capOff, Size: size, Align: align}
}

// StringHeader returns the probed layout of a string header. Strings have
// no capacity field, so CapOffset is -1.
func StringHeader() Header {
	stringOnce.Do(func() {
		size, align := xunsafe.Size[string](), xunsafe.Align[string]()
		w := wordSize()

		s := "xxx"
		wantPtr := uintptr(unsafe.Pointer(unsafe.StringData(s)))

		base := unsafe.Pointer(&s)
		ptrOff, ptrOK := scanForWord(base, size, wantPtr)
		lenOff, lenOK := scanForWord(base, size, uintptr(len(s)))
		if !ptrOK || !lenOK || ptrOff == lenOff {
			ptrOff, lenOff = 0, w
		}

		stringHeader = Header{PtrOffset: ptrOff, LenOffset: lenOff, CapOffset: -1, Size: size, Align: align}
	})
	return stringHeader
}

// scanForWord scans headerSize bytes starting at header, word by word,
// looking for one that equals want. Reports false if no word matches.
func scanForWord(header unsafe.Pointer, headerSize int, want uintptr) (offset int, ok bool) {
	w := wordSize()
	words := headerSize / w
	raw := unsafe.Slice((*uintptr)(header), words)
	for i, v := range raw {
		if v == want {
			return i * w, true
		}
	}
	return 0, false
}
