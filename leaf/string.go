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

// OwnedString is an owned pointer to a byte sequence: layout-wise identical
// to OwnedSlice[byte] except Go's string header has no capacity word, so
// there is no shrink-to-fit step to perform on the way out.
type OwnedString struct {
	s string
}

// NewOwnedString wraps an existing string.
func NewOwnedString(s string) OwnedString { return OwnedString{s: s} }

// String returns the underlying Go string.
func (o OwnedString) String() string { return o.s }

// Len returns the string's length in bytes.
func (o OwnedString) Len() int { return len(o.s) }

// WalkOwnedString implements the OwnedString leaf's walk (§4.5): if the
// string is empty, it does nothing. Otherwise it pushes the byte data with
// PushSliceNoProcess, since bytes have no further Walk of their own, and
// writes the edge pointer at the header's probed data-pointer offset.
//
// o must be the address of the OwnedString field as it exists inside the
// struct currently being walked.
func WalkOwnedString(s *rawser.Serializer, o *OwnedString) {
	if len(o.s) == 0 {
		return
	}

	hdr := probe.StringHeader()
	srcAddr := xunsafe.AddrOf(o).Add(hdr.PtrOffset)

	rawser.PushSliceNoProcess(s, stringBytes(o.s), srcAddr)
}

// stringBytes views a string's bytes without copying. Safe here because the
// view is only ever read from, by PushSliceNoProcess's own copy into the
// arena, and never retained past that call.
func stringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
