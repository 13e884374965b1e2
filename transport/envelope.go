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

// Package transport wraps a finalized serializer buffer for the "IPC
// messages" use case named in the purpose statement: sending the buffer
// somewhere it will never be memory-mapped, only read into a byte slice and
// cast. RelPtr policy is the only policy that makes sense here, since its
// pointers are position-independent and need no knowledge of where the
// receiving end places the bytes.
package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"
)

// Magic distinguishes an envelope from an arbitrary byte stream; it is
// metadata layered outside the serializer's own format, exactly like the
// blobstore manifest, never inside it.
const Magic uint32 = 0x72617773 // "raws"

// Envelope is the on-wire header placed before a RelPtr-policy buffer.
type Envelope struct {
	Magic       uint32
	Compressed  bool
	RawLen      uint32
	PayloadLen  uint32
}

const envelopeHeaderLen = 4 + 1 + 4 + 4

// Encode wraps a finalized RelPtr-policy buffer into a length-prefixed
// envelope, optionally s2-compressing the payload when compress is true and
// doing so would actually shrink it.
func Encode(buf []byte, compress bool) []byte {
	payload := buf
	compressed := false
	if compress {
		enc := s2.Encode(nil, buf)
		if len(enc) < len(buf) {
			payload = enc
			compressed = true
		}
	}

	out := make([]byte, envelopeHeaderLen+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], Magic)
	if compressed {
		out[4] = 1
	}
	binary.LittleEndian.PutUint32(out[5:9], uint32(len(buf)))
	binary.LittleEndian.PutUint32(out[9:13], uint32(len(payload)))
	copy(out[envelopeHeaderLen:], payload)
	return out
}

// Decode parses an envelope produced by Encode and returns the original
// RelPtr-policy buffer, decompressing it if necessary. The returned slice
// is ready to be cast to the root type's pointer; it is never decoded
// field-by-field, matching §6.1's "reading is a cast" contract.
func Decode(wire []byte) ([]byte, error) {
	if len(wire) < envelopeHeaderLen {
		return nil, fmt.Errorf("transport: envelope too short: %d bytes", len(wire))
	}
	magic := binary.LittleEndian.Uint32(wire[0:4])
	if magic != Magic {
		return nil, fmt.Errorf("transport: bad magic %#x", magic)
	}
	compressed := wire[4] != 0
	rawLen := binary.LittleEndian.Uint32(wire[5:9])
	payloadLen := binary.LittleEndian.Uint32(wire[9:13])

	payload := wire[envelopeHeaderLen:]
	if uint32(len(payload)) != payloadLen {
		return nil, fmt.Errorf("transport: truncated payload: want %d, got %d", payloadLen, len(payload))
	}

	if !compressed {
		return payload, nil
	}

	buf := make([]byte, rawLen)
	n, err := s2.Decode(buf, payload)
	if err != nil {
		return nil, fmt.Errorf("transport: decompressing: %w", err)
	}
	if len(n) != int(rawLen) {
		return nil, fmt.Errorf("transport: decompressed length mismatch: want %d, got %d", rawLen, len(n))
	}
	return n, nil
}
